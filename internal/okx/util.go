package okx

import (
	"strconv"

	"okx-trading-core/pkg/types"
)

func parseFloatStr(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func parseUintStr(s string) (types.Timestamp, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return types.Timestamp(v), err
}

func parseInt32Str(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}
