package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"go-photomap/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore reads photo locations from one Firestore collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore builds a client from base64 encoded service account JSON.
func NewFirestoreStore(ctx context.Context, encodedCreds, collection string) (*FirestoreStore, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("decode firestore credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// ListLocations returns every document of the collection in document-id order.
func (s *FirestoreStore) ListLocations(ctx context.Context) ([]types.LocationRecord, error) {
	iter := s.client.Collection(s.collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	locations := []types.LocationRecord{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, fmt.Errorf("%w: collection %s", ErrSnapshotNotFound, s.collection)
			}
			return nil, fmt.Errorf("error iterating locations: %w", err)
		}

		var location types.LocationRecord
		if err := doc.DataTo(&location); err != nil {
			return nil, fmt.Errorf("error converting document %s to LocationRecord: %w", doc.Ref.ID, err)
		}
		locations = append(locations, location)
	}
	return locations, nil
}
