package domain

import (
	"fmt"
)

// BSONType is the expected value type of an encrypted field.
type BSONType string

// Value types the storage driver can encrypt.
const (
	BSONTypeString     BSONType = "string"
	BSONTypeInt        BSONType = "int"
	BSONTypeLong       BSONType = "long"
	BSONTypeDouble     BSONType = "double"
	BSONTypeDecimal    BSONType = "decimal"
	BSONTypeBool       BSONType = "bool"
	BSONTypeDate       BSONType = "date"
	BSONTypeObjectID   BSONType = "objectId"
	BSONTypeBinData    BSONType = "binData"
	BSONTypeObject     BSONType = "object"
	BSONTypeArray      BSONType = "array"
	BSONTypeTimestamp  BSONType = "timestamp"
	BSONTypeRegex      BSONType = "regex"
	BSONTypeJavascript BSONType = "javascript"
)

var supportedTypes = map[BSONType]bool{
	BSONTypeString:     true,
	BSONTypeInt:        true,
	BSONTypeLong:       true,
	BSONTypeDouble:     true,
	BSONTypeDecimal:    true,
	BSONTypeBool:       true,
	BSONTypeDate:       true,
	BSONTypeObjectID:   true,
	BSONTypeBinData:    true,
	BSONTypeObject:     true,
	BSONTypeArray:      true,
	BSONTypeTimestamp:  true,
	BSONTypeRegex:      true,
	BSONTypeJavascript: true,
}

// Types that only support randomized encryption.
var randomOnlyTypes = map[BSONType]bool{
	BSONTypeDouble:  true,
	BSONTypeDecimal: true,
	BSONTypeBool:    true,
	BSONTypeObject:  true,
	BSONTypeArray:   true,
}

// ParseBSONType validates a value type name.
func ParseBSONType(s string) (BSONType, error) {
	t := BSONType(s)
	if !supportedTypes[t] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBSONType, s)
	}
	return t, nil
}

// AllowsDeterministic reports whether values of type t can be encrypted deterministically.
func (t BSONType) AllowsDeterministic() bool {
	return !randomOnlyTypes[t]
}
