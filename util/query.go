package util

import (
	"net/url"

	"github.com/creasty/defaults"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// DecodeQuery fills target from query string values: defaults first, then the
// supplied parameters, then validation.
func DecodeQuery(query url.Values, target interface{}) error {
	if err := defaults.Set(target); err != nil {
		return errors.Wrap(err, "applying query defaults")
	}
	if err := queryDecoder.Decode(target, query); err != nil {
		return errors.Wrap(err, "decoding query parameters")
	}
	return ValidateStruct(target)
}
