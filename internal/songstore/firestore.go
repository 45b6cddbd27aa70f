package songstore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"fermata/internal/apperr"
	"fermata/pkg/models"
)

const songsCollection = "songs"

// FirestoreStore implements Store on top of a Firestore collection.
type FirestoreStore struct {
	client *firestore.Client
	logger *logrus.Logger
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore creates a store backed by the given Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *logrus.Logger) *FirestoreStore {
	return &FirestoreStore{
		client: client,
		logger: logger,
	}
}

// Add writes a new song document. Firestore assigns the document ID.
func (s *FirestoreStore) Add(ctx context.Context, song models.Song) error {
	_, _, err := s.client.Collection(songsCollection).Add(ctx, song)
	if err != nil {
		s.logger.WithError(err).WithField("filename", song.Filename).Error("Failed to add song record")
		return apperr.Wrap(apperr.KindUnavailable, "metadata store unreachable", err)
	}
	return nil
}

// All streams every document in the songs collection.
func (s *FirestoreStore) All(ctx context.Context) ([]models.Song, error) {
	iter := s.client.Collection(songsCollection).Documents(ctx)
	defer iter.Stop()

	var songs []models.Song
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "metadata store unreachable", err)
		}

		var song models.Song
		if err := doc.DataTo(&song); err != nil {
			s.logger.WithError(err).WithField("doc_id", doc.Ref.ID).Warn("Skipping malformed song record")
			continue
		}
		songs = append(songs, song)
	}

	return songs, nil
}

// ByFilename returns the first record matching filename exactly.
func (s *FirestoreStore) ByFilename(ctx context.Context, filename string) (*models.Song, error) {
	iter := s.client.Collection(songsCollection).
		Where("filename", "==", filename).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, apperr.New(apperr.KindNotFound, "song not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "metadata store unreachable", err)
	}

	var song models.Song
	if err := doc.DataTo(&song); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "metadata store unreachable", err)
	}
	return &song, nil
}

// Ping runs a one-document query to verify connectivity.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(songsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return apperr.Wrap(apperr.KindUnavailable, "metadata store unreachable", err)
	}
	return nil
}
