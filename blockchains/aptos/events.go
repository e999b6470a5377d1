package aptos

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventAmbiguous = errors.New("event is ambiguous")
)

// Decode into `out` the data of the only event of type `typeName`.
// Finding no such event or several of them is an error.
func SearchSingleEventData(events []Event, typeName string, out interface{}) error {
	var event *Event
	var err error
	var i int

	for i = range events {
		if !SameEventType(events[i].Type, typeName) {
			continue
		}

		if event != nil {
			return fmt.Errorf("%w: more than one '%s' event",
				ErrEventAmbiguous, typeName)
		}

		event = &events[i]
	}

	if event == nil {
		return fmt.Errorf("%w: no '%s' among %d events",
			ErrEventNotFound, typeName, len(events))
	}

	err = json.Unmarshal(event.Data, out)
	if err != nil {
		return fmt.Errorf("cannot decode '%s' event: %w", typeName, err)
	}

	return nil
}

// Compare two fully qualified struct type names. The address part may be
// written in short or long form, the rest must match exactly.
func SameEventType(a, b string) bool {
	var aaddr, baddr AccountAddress
	var arest, brest string
	var err error

	aaddr, arest, err = splitTypeName(a)
	if err != nil {
		return a == b
	}

	baddr, brest, err = splitTypeName(b)
	if err != nil {
		return a == b
	}

	return (aaddr == baddr) && (arest == brest)
}

func splitTypeName(name string) (AccountAddress, string, error) {
	var addr AccountAddress
	var index int
	var err error

	index = strings.Index(name, "::")
	if index < 0 {
		return addr, "", fmt.Errorf("no module in '%s'", name)
	}

	addr, err = ParseAddressRelaxed(name[:index])
	if err != nil {
		return addr, "", err
	}

	return addr, name[index:], nil
}
