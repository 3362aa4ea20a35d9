package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Done    func(TargetArgs) (Result, error)
	Delete  func(TargetArgs) (Result, error)
	Habit   func(TargetArgs) (Result, error)
	Move    func(MoveArgs) (Result, error)
	Focus   func() (Result, error)
	Import  func(ImportArgs) (Result, error)
	Refresh func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Target)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete(*cmd.Target)
	case TypeHabit:
		if handlers.Habit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Habit(*cmd.Target)
	case TypeMove:
		if handlers.Move == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Move(*cmd.Move)
	case TypeFocus:
		if handlers.Focus == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Focus()
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Import(*cmd.Import)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
