package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	vaultDomain "github.com/allisson/fieldvault/internal/vault/domain"
)

// CompiledSchema is the validator document produced by compiling a policy against a data
// key. It is derived data: never persisted on its own, always recomputed from the registry.
type CompiledSchema struct {
	// KeyID is the schema's default data key, referenced by encryptMetadata.keyId.
	KeyID vaultDomain.KeyID
	// Document is the $jsonSchema document.
	Document bson.D
}

// Validator returns the collection validator: {$jsonSchema: Document}.
func (c *CompiledSchema) Validator() bson.D {
	return bson.D{{Key: "$jsonSchema", Value: c.Document}}
}

// Bytes returns the BSON encoding of Document. Identical schemas encode identically.
func (c *CompiledSchema) Bytes() ([]byte, error) {
	return bson.Marshal(c.Document)
}

// ExtJSON renders the validator as indented relaxed extended JSON.
func (c *CompiledSchema) ExtJSON() ([]byte, error) {
	raw, err := bson.MarshalExtJSON(c.Validator(), false, false)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// KeyBindings returns the data key each encrypted field path is bound to.
func (c *CompiledSchema) KeyBindings() (map[string]string, error) {
	raw, err := c.Bytes()
	if err != nil {
		return nil, err
	}
	return KeyBindings(raw)
}

// KeyBindings walks a $jsonSchema document and returns, for every encrypted field path, the
// data key it is bound to. Keys inherit from the nearest encryptMetadata.keyId and may be
// overridden by encrypt.keyId. Binary key ids are rendered in base64; keyAltName JSON
// pointers are returned as written.
func KeyBindings(schema bson.Raw) (map[string]string, error) {
	bindings := make(map[string]string)
	if err := collectBindings(schema, "", "", bindings); err != nil {
		return nil, err
	}
	return bindings, nil
}

func collectBindings(node bson.Raw, path, inherited string, out map[string]string) error {
	if keyID, err := node.LookupErr("encryptMetadata", "keyId"); err == nil {
		inherited = keyIDBinding(keyID)
	}

	if enc, err := node.LookupErr("encrypt"); err == nil {
		binding := inherited
		if encDoc, ok := enc.DocumentOK(); ok {
			if keyID, err := encDoc.LookupErr("keyId"); err == nil {
				binding = keyIDBinding(keyID)
			}
		}
		out[path] = binding
		return nil
	}

	props, err := node.LookupErr("properties")
	if err != nil {
		return nil
	}
	doc, ok := props.DocumentOK()
	if !ok {
		return fmt.Errorf("properties of %q is not a document", path)
	}

	elems, err := doc.Elements()
	if err != nil {
		return fmt.Errorf("malformed properties of %q: %w", path, err)
	}
	for _, e := range elems {
		child, ok := e.Value().DocumentOK()
		if !ok {
			continue
		}
		childPath := e.Key()
		if path != "" {
			childPath = path + "." + childPath
		}
		if err := collectBindings(child, childPath, inherited, out); err != nil {
			return err
		}
	}
	return nil
}

func keyIDBinding(v bson.RawValue) string {
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	arr, ok := v.ArrayOK()
	if !ok {
		return ""
	}
	values, err := arr.Values()
	if err != nil || len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, value := range values {
		if _, data, ok := value.BinaryOK(); ok {
			parts = append(parts, base64.StdEncoding.EncodeToString(data))
		}
	}
	return strings.Join(parts, ",")
}

// BindingConflicts returns, sorted, the field paths present in both live and desired whose
// key bindings differ.
func BindingConflicts(live, desired map[string]string) []string {
	var conflicts []string
	for path, want := range desired {
		if have, ok := live[path]; ok && have != want {
			conflicts = append(conflicts, path)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}
