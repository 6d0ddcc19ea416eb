package shell

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/procsim/model/process"
	"github.com/viant/toolbox"
)

// ErrInvalidArgument is returned for a malformed command line; it is the
// process sentinel so callers match one error for every bad input
var ErrInvalidArgument = process.ErrInvalidArgument

// Arg is a single command argument
type Arg struct {
	Text    string
	Integer bool
}

// Int converts the argument to int
func (a Arg) Int() (int, error) {
	if !a.Integer {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, a.Text)
	}
	value, err := toolbox.ToInt(a.Text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return value, nil
}

// Command is a parsed command line
type Command struct {
	Name string
	Args []Arg
}

// Ints converts all arguments, requiring exactly expect of them
func (c *Command) Ints(expect int) ([]int, error) {
	if len(c.Args) != expect {
		return nil, fmt.Errorf("%w: %v expects %d arguments, got %d", ErrInvalidArgument, c.Name, expect, len(c.Args))
	}
	ret := make([]int, 0, expect)
	for _, arg := range c.Args {
		value, err := arg.Int()
		if err != nil {
			return nil, err
		}
		ret = append(ret, value)
	}
	return ret, nil
}

// Parse tokenizes a command line; a blank line yields nil
func Parse(line string) (*Command, error) {
	cursor := parsly.NewCursor("", []byte(line), 0)
	matched := cursor.MatchAfterOptional(whitespaceToken, wordToken)
	switch matched.Code {
	case wordToken.Code:
	case parsly.EOF:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, cursor.NewError(wordToken))
	}
	command := &Command{Name: strings.ToLower(matched.Text(cursor))}
	for {
		matched = cursor.MatchAfterOptional(whitespaceToken, integerToken, wordToken)
		switch matched.Code {
		case parsly.EOF:
			return command, nil
		case integerToken.Code:
			command.Args = append(command.Args, Arg{Text: matched.Text(cursor), Integer: true})
		case wordToken.Code:
			command.Args = append(command.Args, Arg{Text: matched.Text(cursor)})
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, cursor.NewError(integerToken, wordToken))
		}
	}
}
