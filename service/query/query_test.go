package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Where(t *testing.T) {
	testCases := []struct {
		description string
		template    string
		args        []interface{}
		expected    []*Condition
		expectErr   bool
	}{
		{
			description: "single equality",
			template:    "COLL_NAME = ?",
			args:        []interface{}{"/tempZone/home/datarequests-research/1"},
			expected: []*Condition{
				{Column: CollName, Operator: Equal, Values: []string{"/tempZone/home/datarequests-research/1"}, arity: 1},
			},
		},
		{
			description: "conjunction with like and not equal",
			template:    "COLL_NAME = ? and DATA_NAME like ? AND USER_TYPE <> ?",
			args:        []interface{}{"/c", "review_%", "rodsgroup"},
			expected: []*Condition{
				{Column: CollName, Operator: Equal, Values: []string{"/c"}, arity: 1},
				{Column: DataName, Operator: Like, Values: []string{"review_%"}, arity: 1},
				{Column: UserType, Operator: NotEqual, Values: []string{"rodsgroup"}, arity: 1},
			},
		},
		{
			description: "in list with slice argument",
			template:    "USER_GROUP_NAME IN (?, ?)",
			args:        []interface{}{[]string{"research-a", "read-research-a"}},
			expected: []*Condition{
				{Column: UserGroupName, Operator: In, Values: []string{"research-a", "read-research-a"}, arity: 2},
			},
		},
		{
			description: "not like",
			template:    "USER_GROUP_NAME NOT LIKE ?",
			args:        []interface{}{"vault-%"},
			expected: []*Condition{
				{Column: UserGroupName, Operator: NotLike, Values: []string{"vault-%"}, arity: 1},
			},
		},
		{
			description: "non string argument",
			template:    "DATA_SIZE = ?",
			args:        []interface{}{12},
			expected: []*Condition{
				{Column: DataSize, Operator: Equal, Values: []string{"12"}, arity: 1},
			},
		},
		{
			description: "inline literal is rejected",
			template:    "COLL_NAME = 'x'",
			expectErr:   true,
		},
		{
			description: "unknown column",
			template:    "COLL_PATH = ?",
			args:        []interface{}{"x"},
			expectErr:   true,
		},
		{
			description: "argument count mismatch",
			template:    "COLL_NAME = ? AND DATA_NAME = ?",
			args:        []interface{}{"x"},
			expectErr:   true,
		},
		{
			description: "trailing garbage",
			template:    "COLL_NAME = ? OR DATA_NAME = ?",
			args:        []interface{}{"x", "y"},
			expectErr:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Select(CollName).Where(testCase.template, testCase.args...)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.EqualValues(t, testCase.expected, actual.Conditions)
		})
	}
}

func TestQuery_String(t *testing.T) {
	aQuery, err := Select(DataOwnerName).Where("COLL_NAME = ? AND DATA_NAME = ?", "/zone/o'brien", "datarequest.json")
	assert.NoError(t, err)
	assert.Equal(t, "SELECT DATA_OWNER_NAME WHERE COLL_NAME = '/zone/o''brien' AND DATA_NAME = 'datarequest.json'", aQuery.String())
}

func TestQuery_Domain(t *testing.T) {
	testCases := []struct {
		description string
		query       *Query
		expected    Domain
		expectErr   bool
	}{
		{description: "data", query: Select(CollName, MetaDataAttrValue), expected: DomainData},
		{description: "user", query: Select(UserGroupName, MetaUserAttrName), expected: DomainUser},
		{description: "mixed", query: Select(UserGroupName, CollName), expectErr: true},
		{description: "empty", query: Select(), expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := testCase.query.Domain()
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

func TestQuery_Match(t *testing.T) {
	aQuery, err := Select(UserGroupName, UserName).Where("USER_TYPE != ? AND USER_GROUP_NAME NOT LIKE ?", "rodsgroup", "vault-%")
	assert.NoError(t, err)
	testCases := []struct {
		description string
		row         Row
		expected    bool
	}{
		{description: "member row", row: Row{UserGroupName: "research-a", UserName: "bob", UserType: "rodsuser"}, expected: true},
		{description: "group row", row: Row{UserGroupName: "research-a", UserName: "research-a", UserType: "rodsgroup"}, expected: false},
		{description: "vault row", row: Row{UserGroupName: "vault-a", UserName: "bob", UserType: "rodsuser"}, expected: false},
		{description: "missing column", row: Row{UserGroupName: "research-a"}, expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expected, aQuery.Match(testCase.row))
		})
	}
}

func TestMatchLike(t *testing.T) {
	testCases := []struct {
		pattern  string
		value    string
		expected bool
	}{
		{pattern: "review_%", value: "review_bob.json", expected: true},
		{pattern: "review_%", value: "reviewXbob.json", expected: true},
		{pattern: `review\_%`, value: "reviewXbob.json", expected: false},
		{pattern: "%.json", value: "evaluation_alice.json", expected: true},
		{pattern: "vault-%", value: "research-vault", expected: false},
		{pattern: "a%b%c", value: "aXXbYYc", expected: true},
		{pattern: "a%b%c", value: "aXXbYY", expected: false},
		{pattern: "%", value: "", expected: true},
		{pattern: EscapeLike("100%_ok"), value: "100%_ok", expected: true},
		{pattern: EscapeLike("100%_ok"), value: "100abok", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.pattern+"/"+testCase.value, func(t *testing.T) {
			assert.Equal(t, testCase.expected, MatchLike(testCase.pattern, testCase.value))
		})
	}
}
