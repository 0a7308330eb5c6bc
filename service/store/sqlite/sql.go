package sqlite

import (
	"fmt"
	"strings"

	"github.com/viant/datarequest/service/query"
)

var dataColumns = map[query.Column]string{
	query.CollName:          "d.coll_name",
	query.DataName:          "d.data_name",
	query.DataSize:          "CAST(d.size AS TEXT)",
	query.DataOwnerName:     "d.owner",
	query.DataCreateTime:    "CAST(d.created_at AS TEXT)",
	query.MetaDataAttrName:  "m.attr_name",
	query.MetaDataAttrValue: "m.attr_value",
}

var userColumns = map[query.Column]string{
	query.UserGroupName:     "ug.group_name",
	query.UserName:          "ug.user_name",
	query.UserZone:          "ug.user_zone",
	query.UserType:          "ug.user_type",
	query.MetaUserAttrName:  "m.attr_name",
	query.MetaUserAttrValue: "m.attr_value",
}

// render translates q into a SELECT with bound parameters
func render(q *query.Query) (string, []interface{}, error) {
	domain, err := q.Domain()
	if err != nil {
		return "", nil, err
	}
	var expressions map[query.Column]string
	var from string
	switch domain {
	case query.DomainData:
		expressions = dataColumns
		from = "data_objects d"
		if q.HasMeta() {
			from += " JOIN data_meta m ON m.coll_name = d.coll_name AND m.data_name = d.data_name"
		}
	case query.DomainUser:
		expressions = userColumns
		from = "user_groups ug"
		if q.HasMeta() {
			from += " JOIN user_meta m ON m.user_name = ug.user_name"
		}
	default:
		return "", nil, fmt.Errorf("unsupported query domain")
	}

	selected := make([]string, 0, len(q.Columns))
	for _, column := range q.Columns {
		selected = append(selected, expressions[column])
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT DISTINCT ")
	builder.WriteString(strings.Join(selected, ", "))
	builder.WriteString(" FROM ")
	builder.WriteString(from)

	var args []interface{}
	for i, condition := range q.Conditions {
		if i == 0 {
			builder.WriteString(" WHERE ")
		} else {
			builder.WriteString(" AND ")
		}
		expression := expressions[condition.Column]
		switch condition.Operator {
		case query.Equal:
			builder.WriteString(expression + " = ?")
		case query.NotEqual:
			builder.WriteString(expression + " <> ?")
		case query.Like:
			builder.WriteString(expression + ` LIKE ? ESCAPE '\'`)
		case query.NotLike:
			builder.WriteString(expression + ` NOT LIKE ? ESCAPE '\'`)
		case query.In:
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(condition.Values)), ", ")
			builder.WriteString(expression + " IN (" + placeholders + ")")
		default:
			return "", nil, fmt.Errorf("unsupported operator: %v", condition.Operator)
		}
		for _, value := range condition.Values {
			args = append(args, value)
		}
	}
	builder.WriteString(" ORDER BY ")
	builder.WriteString(strings.Join(selected, ", "))
	return builder.String(), args, nil
}
