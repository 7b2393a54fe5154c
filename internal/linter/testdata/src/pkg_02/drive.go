package drive

import "errors"

var errEmpty = errors.New("empty")

func Extract(raw string) (string, error) {
	if raw == "" {
		return "", errEmpty
	}
	return raw, nil
}

func MustExtract(raw string) string {
	id, err := Extract(raw)
	if err != nil {
		panic(err) // want "not recommended function"
	}
	return id
}
