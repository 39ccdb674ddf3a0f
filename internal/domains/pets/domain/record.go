package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// serverManaged are the record keys the backend owns and never accepts back.
var serverManaged = []string{"id", "createdAt", "updatedAt"}

// UnmarshalJSON decodes the typed fields and keeps the whole record so keys the client does not
// model, and explicit nulls, are sent back unchanged on update.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range serverManaged {
		delete(raw, key)
	}
	*p = Profile(decoded)
	p.raw = raw
	return nil
}

// MarshalJSON encodes the typed fields over the decoded record. Typed values win; record keys
// the typed encoding drops survive when they are unknown or null.
func (p Profile) MarshalJSON() ([]byte, error) {
	type plain Profile
	typed, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	return restoreOmitted(reflect.TypeOf(p), typed, p.raw)
}

// UnmarshalJSON splits the server-managed fields from the profile.
func (p *Pet) UnmarshalJSON(data []byte) error {
	var managed struct {
		ID        string `json:"id"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &managed); err != nil {
		return err
	}
	var profile Profile
	if err := profile.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = Pet{ID: managed.ID, CreatedAt: managed.CreatedAt, UpdatedAt: managed.UpdatedAt, Profile: profile}
	return nil
}

// MarshalJSON encodes the full record.
func (p Pet) MarshalJSON() ([]byte, error) {
	body, err := p.Profile.MarshalJSON()
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	managed := map[string]string{"id": p.ID, "createdAt": p.CreatedAt, "updatedAt": p.UpdatedAt}
	for key, value := range managed {
		if value == "" && key != "id" {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		fields[key] = encoded
	}
	return json.Marshal(fields)
}

func restoreOmitted(t reflect.Type, typed []byte, source map[string]json.RawMessage) ([]byte, error) {
	if len(source) == 0 {
		return typed, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(typed, &out); err != nil || out == nil {
		return typed, nil
	}
	known := jsonFields(t)
	for key, original := range source {
		current, present := out[key]
		field, isKnown := known[key]
		switch {
		case !present && (!isKnown || isNull(original)):
			out[key] = original
		case present && isKnown:
			nested, err := restoreNested(field, current, original)
			if err != nil {
				return nil, err
			}
			out[key] = nested
		}
	}
	return json.Marshal(out)
}

func restoreNested(t reflect.Type, typed, original json.RawMessage) (json.RawMessage, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return typed, nil
	}
	var source map[string]json.RawMessage
	if err := json.Unmarshal(original, &source); err != nil {
		return typed, nil
	}
	return restoreOmitted(t, typed, source)
}

// jsonFields maps the JSON names of a struct's encoded fields to their types.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	fields := map[string]reflect.Type{}
	if t.Kind() != reflect.Struct {
		return fields
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() && !f.Anonymous {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			for k, v := range jsonFields(f.Type) {
				fields[k] = v
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = f.Type
	}
	return fields
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
