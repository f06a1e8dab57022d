package preset

import (
	"context"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// Collect loads the preset files followed by the shared presets and resolves
// them against src. A nil store is only valid when no shared names are given.
func Collect(
	ctx context.Context,
	files []string,
	shared []string,
	store *RedisStore,
	src PrototypeSource,
) ([]*pool.Preset, error) {
	docs := make([]*Document, 0, len(files)+len(shared))
	for _, f := range files {
		doc, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(shared) > 0 && store == nil {
		return nil, ErrNoStore
	}
	for _, name := range shared {
		doc, err := store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	presets := make([]*pool.Preset, 0, len(docs))
	for _, doc := range docs {
		p, err := Resolve(doc, src)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	return presets, nil
}
