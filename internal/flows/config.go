package flows

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
	"github.com/Lllllllleong/researchpipeline/internal/storage"
)

// Config is the document contract of one stage: which families it reads and
// the single family it writes.
type Config struct {
	Name          string
	InputFamilies []documents.Family
	OutputFamily  documents.Family
}

// GetInputDocuments keeps the documents of the declared input families.
func (c Config) GetInputDocuments(docs documents.Collection) documents.Collection {
	return docs.FilterBy(c.InputFamilies...)
}

// CreateAndValidateOutput accepts the stage output only when it is non-empty
// and every document belongs to the output family.
func (c Config) CreateAndValidateOutput(docs ...documents.Document) (documents.Collection, error) {
	if len(docs) == 0 {
		return nil, retry.Permanent(fmt.Errorf("%w: %s produced no documents", ErrContractViolation, c.Name))
	}
	for _, d := range docs {
		if d.Family() != c.OutputFamily {
			return nil, retry.Permanent(fmt.Errorf("%w: %s produced %s document %q, expected %s",
				ErrContractViolation, c.Name, d.Family(), d.Name(), c.OutputFamily))
		}
	}
	return slices.Clone(documents.Collection(docs)), nil
}

// LoadDocuments reads every stored document of the input families, each
// family in name order.
func (c Config) LoadDocuments(ctx context.Context, store storage.Storage) (documents.Collection, error) {
	var out documents.Collection
	for _, f := range c.InputFamilies {
		names, err := store.List(ctx, f.CanonicalName())
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", f.CanonicalName(), err)
		}

		for _, name := range names {
			key := path.Join(f.CanonicalName(), name)
			data, err := store.Read(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", key, err)
			}
			d, err := documents.New(f, name, data)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", key, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// SaveDocuments writes each document under <family>/<name>. A later document
// with the same key overwrites an earlier one.
func (c Config) SaveDocuments(ctx context.Context, store storage.Storage, docs documents.Collection) error {
	for _, d := range docs {
		if err := store.Write(ctx, d.Key(), d.Content(), d.MimeType()); err != nil {
			return fmt.Errorf("save %s: %w", d.Key(), err)
		}
	}
	return nil
}
