package blobstore

import (
	"context"

	"github.com/lightjacket/pef"
	"github.com/lightjacket/pef/persistence"
)

// Save serializes an encoded set into a persistence container and puts
// it under name.
func Save(ctx context.Context, s Store, name string, e *pef.Encoded, opts ...persistence.Option) error {
	data, err := persistence.Marshal(e, opts...)
	if err != nil {
		return err
	}
	return s.Put(ctx, name, data)
}

// Load fetches the blob under name and reconstructs the encoded set.
func Load(ctx context.Context, s Store, name string) (*pef.Encoded, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return persistence.Unmarshal(data)
}
