package query

// Column names a queryable store attribute.
type Column string

// Data object columns.
const (
	CollName          Column = "COLL_NAME"
	DataName          Column = "DATA_NAME"
	DataSize          Column = "DATA_SIZE"
	DataOwnerName     Column = "DATA_OWNER_NAME"
	DataCreateTime    Column = "DATA_CREATE_TIME"
	MetaDataAttrName  Column = "META_DATA_ATTR_NAME"
	MetaDataAttrValue Column = "META_DATA_ATTR_VALUE"
)

// User and group columns.
const (
	UserGroupName     Column = "USER_GROUP_NAME"
	UserName          Column = "USER_NAME"
	UserZone          Column = "USER_ZONE"
	UserType          Column = "USER_TYPE"
	MetaUserAttrName  Column = "META_USER_ATTR_NAME"
	MetaUserAttrValue Column = "META_USER_ATTR_VALUE"
)

// Domain groups columns that can be selected together.
type Domain int

const (
	DomainUnknown Domain = iota
	DomainData
	DomainUser
)

var columns = map[Column]Domain{
	CollName:          DomainData,
	DataName:          DomainData,
	DataSize:          DomainData,
	DataOwnerName:     DomainData,
	DataCreateTime:    DomainData,
	MetaDataAttrName:  DomainData,
	MetaDataAttrValue: DomainData,
	UserGroupName:     DomainUser,
	UserName:          DomainUser,
	UserZone:          DomainUser,
	UserType:          DomainUser,
	MetaUserAttrName:  DomainUser,
	MetaUserAttrValue: DomainUser,
}

// Domain returns the column domain, DomainUnknown for unsupported names.
func (c Column) Domain() Domain {
	return columns[c]
}

// IsMeta reports whether the column reads attribute (AVU) rows.
func (c Column) IsMeta() bool {
	switch c {
	case MetaDataAttrName, MetaDataAttrValue, MetaUserAttrName, MetaUserAttrValue:
		return true
	}
	return false
}

// Lookup returns a column by its name.
func Lookup(name string) (Column, bool) {
	column := Column(name)
	_, ok := columns[column]
	return column, ok
}
