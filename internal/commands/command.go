package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeDelete  Type = "delete"
	TypeHabit   Type = "habit"
	TypeMove    Type = "move"
	TypeFocus   Type = "focus"
	TypeImport  Type = "import"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

// TargetArgs names a single task or habit by id.
type TargetArgs struct {
	ID string
}

type MoveArgs struct {
	ID     string
	Status string
}

type ImportArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Move   *MoveArgs
	Import *ImportArgs
}

// Names lists the palette commands in display order.
func Names() []Type {
	return []Type{TypeAdd, TypeDone, TypeDelete, TypeHabit, TypeMove, TypeFocus, TypeImport, TypeRefresh}
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeDelete, TypeHabit:
		return parseTarget(input, Type(head), args)
	case TypeMove:
		return parseMove(input, args)
	case TypeFocus, TypeRefresh:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	case TypeImport:
		return parseImport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one id", typ)}
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{ID: args[0]}}, nil
}

func parseMove(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "move requires an id and a status"}
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{ID: args[0], Status: strings.Join(args[1:], " ")}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: strings.Join(args, " ")}}, nil
}
