package query

import (
	"fmt"

	"github.com/viant/parsly"
)

// parse parses a condition template such as "COLL_NAME = ? AND DATA_NAME LIKE ?".
// Values are never part of the template; every operand is a ? placeholder.
func parse(template string) ([]*Condition, error) {
	cursor := parsly.NewCursor("", []byte(template), 0)
	var result []*Condition
	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, columnToken)
		if matched.Code != columnCode {
			return nil, cursor.NewError(columnToken)
		}
		name := matched.Text(cursor)
		column, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unsupported column: %v", name)
		}
		condition := &Condition{Column: column}

		matched = cursor.MatchAfterOptional(whitespaceToken, notEqualToken, equalToken, notLikeToken, likeToken, inToken)
		switch matched.Code {
		case notEqualCode:
			condition.Operator = NotEqual
		case equalCode:
			condition.Operator = Equal
		case notLikeCode:
			condition.Operator = NotLike
		case likeCode:
			condition.Operator = Like
		case inCode:
			condition.Operator = In
		default:
			return nil, cursor.NewError(equalToken)
		}

		if condition.Operator == In {
			if matched = cursor.MatchAfterOptional(whitespaceToken, openParenToken); matched.Code != openParenCode {
				return nil, cursor.NewError(openParenToken)
			}
			for {
				if matched = cursor.MatchAfterOptional(whitespaceToken, placeholderToken); matched.Code != placeholderCode {
					return nil, cursor.NewError(placeholderToken)
				}
				condition.arity++
				matched = cursor.MatchAfterOptional(whitespaceToken, commaToken, closeParenToken)
				if matched.Code == closeParenCode {
					break
				}
				if matched.Code != commaCode {
					return nil, cursor.NewError(closeParenToken)
				}
			}
		} else {
			if matched = cursor.MatchAfterOptional(whitespaceToken, placeholderToken); matched.Code != placeholderCode {
				return nil, cursor.NewError(placeholderToken)
			}
			condition.arity = 1
		}
		result = append(result, condition)

		if matched = cursor.MatchAfterOptional(whitespaceToken, andToken); matched.Code == andCode {
			continue
		}
		for cursor.Pos < cursor.InputSize && isSpace(cursor.Input[cursor.Pos]) {
			cursor.Pos++
		}
		if cursor.Pos < cursor.InputSize {
			return nil, cursor.NewError(andToken)
		}
		return result, nil
	}
}
