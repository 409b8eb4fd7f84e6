package config

import "reflect"

// diffEvent lists the top-level struct fields that differ between old and
// new. Non-struct values produce an event without keys.
func diffEvent(old, new any) Event {
	evt := Event{OldConfig: old, NewConfig: new}
	if old == nil || new == nil {
		return evt
	}

	oldVal := reflect.Indirect(reflect.ValueOf(old))
	newVal := reflect.Indirect(reflect.ValueOf(new))
	if oldVal.Kind() != reflect.Struct || newVal.Kind() != reflect.Struct || oldVal.Type() != newVal.Type() {
		return evt
	}

	for i := 0; i < oldVal.NumField(); i++ {
		field := oldVal.Type().Field(i)
		if !field.IsExported() {
			continue
		}
		if !reflect.DeepEqual(oldVal.Field(i).Interface(), newVal.Field(i).Interface()) {
			evt.ChangedKeys = append(evt.ChangedKeys, field.Name)
		}
	}
	return evt
}
