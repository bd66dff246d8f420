package documents

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var knownTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".json":     "application/json",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".txt":      "text/plain",
	".pdf":      "application/pdf",
}

// Document is an immutable artifact produced or consumed by a stage.
type Document struct {
	family   Family
	name     string
	content  []byte
	mimeType string
}

// New validates name against the family's constraint and builds a document.
// The content is copied.
func New(family Family, name string, content []byte) (Document, error) {
	if !family.Valid() {
		return Document{}, fmt.Errorf("%w: %v", ErrUnknownFamily, family)
	}

	if err := ValidateName(name); err != nil {
		return Document{}, err
	}

	if !family.Names().Allows(name) {
		return Document{}, fmt.Errorf("%w: %s does not accept %q", ErrUnknownFile, family, name)
	}

	if err := validateContent(name, content); err != nil {
		return Document{}, err
	}

	return Document{
		family:   family,
		name:     name,
		content:  bytes.Clone(content),
		mimeType: detectMimeType(name, content),
	}, nil
}

// NewJSON encodes v as indented JSON and builds a document from it.
func NewJSON(family Family, name string, v any) (Document, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("%w: encode %s: %w", ErrInvalidContent, name, err)
	}
	return New(family, name, data)
}

// NewYAML encodes v as YAML and builds a document from it.
func NewYAML(family Family, name string, v any) (Document, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("%w: encode %s: %w", ErrInvalidContent, name, err)
	}
	return New(family, name, data)
}

// ValidateName rejects names that are empty or contain path separators.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

func validateContent(name string, content []byte) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		if !json.Valid(content) {
			return fmt.Errorf("%w: %s is not valid JSON", ErrInvalidContent, name)
		}
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(content, &v); err != nil {
			return fmt.Errorf("%w: %s is not valid YAML: %w", ErrInvalidContent, name, err)
		}
	}
	return nil
}

func detectMimeType(name string, content []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := knownTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(content)
}

func (d Document) Family() Family { return d.family }

func (d Document) Name() string { return d.name }

func (d Document) MimeType() string { return d.mimeType }

func (d Document) Size() int { return len(d.content) }

// Content returns a copy of the document bytes.
func (d Document) Content() []byte {
	return bytes.Clone(d.content)
}

// Text returns the content as a string.
func (d Document) Text() string {
	return string(d.content)
}

// IsText reports whether the content can be sent to a model as plain text.
func (d Document) IsText() bool {
	if strings.HasPrefix(d.mimeType, "text/") {
		return utf8.Valid(d.content)
	}
	switch d.mimeType {
	case "application/json", "application/yaml":
		return true
	}
	return false
}

// Key is the storage address of the document relative to a project base.
func (d Document) Key() string {
	return d.family.CanonicalName() + "/" + d.name
}

// SHA256 returns the hex digest of the content.
func (d Document) SHA256() string {
	sum := sha256.Sum256(d.content)
	return hex.EncodeToString(sum[:])
}

// DecodeJSON unmarshals JSON content into v.
func (d Document) DecodeJSON(v any) error {
	if err := json.Unmarshal(d.content, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.name, err)
	}
	return nil
}

func (d Document) String() string {
	return fmt.Sprintf("%s(%s)", d.family, d.name)
}

type serialized struct {
	Family          string `json:"family"`
	Name            string `json:"name"`
	MimeType        string `json:"mime_type"`
	Size            int    `json:"size"`
	SHA256          string `json:"sha256"`
	Content         string `json:"content"`
	ContentEncoding string `json:"content_encoding,omitempty"`
}

// MarshalJSON emits the document for webhook delivery. Binary content is
// base64 encoded.
func (d Document) MarshalJSON() ([]byte, error) {
	s := serialized{
		Family:   d.family.CanonicalName(),
		Name:     d.name,
		MimeType: d.mimeType,
		Size:     len(d.content),
		SHA256:   d.SHA256(),
	}
	if utf8.Valid(d.content) {
		s.Content = string(d.content)
	} else {
		s.Content = base64.StdEncoding.EncodeToString(d.content)
		s.ContentEncoding = "base64"
	}
	return json.Marshal(s)
}
