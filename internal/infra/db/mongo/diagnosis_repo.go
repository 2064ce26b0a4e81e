package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	domain "github.com/medicare-ai/aidoctor-backend/internal/domain/diagnosis"
)

type DiagnosisRepository struct {
	coll *mongodrv.Collection
}

func NewDiagnosisRepository(db *mongodrv.Database) *DiagnosisRepository {
	return &DiagnosisRepository{coll: db.Collection("diagnoses")}
}

// diagnosisDoc is the stored shape. The ObjectID stays inside this
// package; callers only ever see its hex string.
type diagnosisDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	Diagnosis  string             `bson:"diagnosis"`
	Transcript string             `bson:"transcript"`
	AudioURL   string             `bson:"audioUrl,omitempty"`
	ImageURL   string             `bson:"imageUrl,omitempty"`
	TTSURL     string             `bson:"ttsUrl,omitempty"`
	Symptom    string             `bson:"symptom,omitempty"`
	FrontendID string             `bson:"frontendId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func toDoc(r *domain.Record) *diagnosisDoc {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &diagnosisDoc{
		UserID:     r.UserID,
		Diagnosis:  r.Diagnosis,
		Transcript: r.Transcript,
		AudioURL:   r.AudioURL,
		ImageURL:   r.ImageURL,
		TTSURL:     r.TTSURL,
		Symptom:    r.Symptom,
		FrontendID: r.FrontendID,
		CreatedAt:  created,
	}
}

func (d *diagnosisDoc) toRecord() *domain.Record {
	return &domain.Record{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Diagnosis:  d.Diagnosis,
		Transcript: d.Transcript,
		AudioURL:   d.AudioURL,
		ImageURL:   d.ImageURL,
		TTSURL:     d.TTSURL,
		Symptom:    d.Symptom,
		FrontendID: d.FrontendID,
		CreatedAt:  d.CreatedAt,
	}
}

func (r *DiagnosisRepository) Insert(ctx context.Context, rec *domain.Record) (string, error) {
	res, err := r.coll.InsertOne(ctx, toDoc(rec))
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return oid.Hex(), nil
}

func (r *DiagnosisRepository) FindByFrontendID(ctx context.Context, frontendID string) (*domain.Record, error) {
	var doc diagnosisDoc
	err := r.coll.FindOne(ctx, bson.M{"frontendId": frontendID}).Decode(&doc)
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toRecord(), nil
}

func (r *DiagnosisRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Record, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Record
	for cur.Next(ctx) {
		var doc diagnosisDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRecord())
	}
	return out, cur.Err()
}
