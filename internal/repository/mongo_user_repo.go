package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edunextgen-api/internal/domain"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name,omitempty"`
	Image        string             `bson:"image,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    string             `bson:"created_at"`
	LastLoggedIn string             `bson:"last_loggedIn"`
	UpdatedAt    string             `bson:"updated_at,omitempty"`
	Profile      *profileDocument   `bson:"profile,omitempty"`
}

type profileDocument struct {
	Title        string  `bson:"title"`
	Bio          string  `bson:"bio"`
	Location     string  `bson:"location"`
	Phone        string  `bson:"phone"`
	Education    []any   `bson:"education"`
	Subjects     []any   `bson:"subjects"`
	Experience   []any   `bson:"experience"`
	Verified     bool    `bson:"verified"`
	Rating       float64 `bson:"rating"`
	TotalReviews int     `bson:"totalReviews"`
}

// mongoCollection es la parte de *mongo.Collection que usa el repositorio.
type mongoCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Database() *mongo.Database
}

// MongoUserRepository implementa UserRepository sobre una coleccion de MongoDB.
type MongoUserRepository struct {
	coll mongoCollection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

// UpsertLogin usa un unico update con upsert: $set refresca el login y
// $setOnInsert solo aplica cuando el documento se crea.
func (r *MongoUserRepository) UpsertLogin(ctx context.Context, user domain.User) (WriteResult, error) {
	filter := bson.M{"email": user.Email}
	update := loginUpsertUpdate(user)
	opts := options.Update().SetUpsert(true)

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// otro upsert concurrente inserto primero; el reintento hace match
		res, err = r.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return WriteResult{}, err
	}

	out := WriteResult{
		Acknowledged:  true,
		Inserted:      res.UpsertedCount > 0,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out, nil
}

func (r *MongoUserRepository) TouchLogin(ctx context.Context, email, lastLoggedIn string) (WriteResult, error) {
	update := bson.M{"$set": bson.M{"last_loggedIn": lastLoggedIn}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, email string, profile domain.TutorProfile, updatedAt string) (UpdateResult, error) {
	update := bson.M{"$set": bson.M{
		"profile":    newProfileDocument(profile),
		"updated_at": updatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

func (r *MongoUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "email": 1, "image": 1, "profile": 1, "role": 1}).
		SetSort(bson.D{{Key: "profile.rating", Value: -1}})

	cur, err := r.coll.Find(ctx, bson.M{"role": string(role)}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

func (r *MongoUserRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func loginUpsertUpdate(user domain.User) bson.M {
	onInsert := bson.M{
		"role":       string(user.Role),
		"created_at": user.CreatedAt,
	}
	if user.Name != "" {
		onInsert["name"] = user.Name
	}
	if user.Image != "" {
		onInsert["image"] = user.Image
	}
	if user.Profile != nil {
		onInsert["profile"] = newProfileDocument(*user.Profile)
	}
	return bson.M{
		"$set":         bson.M{"last_loggedIn": user.LastLoggedIn},
		"$setOnInsert": onInsert,
	}
}

func newProfileDocument(p domain.TutorProfile) profileDocument {
	p = p.Normalized()
	return profileDocument{
		Title:        p.Title,
		Bio:          p.Bio,
		Location:     p.Location,
		Phone:        p.Phone,
		Education:    []any(p.Education),
		Subjects:     []any(p.Subjects),
		Experience:   []any(p.Experience),
		Verified:     p.Verified,
		Rating:       p.Rating,
		TotalReviews: p.TotalReviews,
	}
}

func (d userDocument) toDomain() domain.User {
	u := domain.User{
		Email:        d.Email,
		Name:         d.Name,
		Image:        d.Image,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		LastLoggedIn: d.LastLoggedIn,
		UpdatedAt:    d.UpdatedAt,
	}
	if !d.ID.IsZero() {
		u.ID = d.ID.Hex()
	}
	if d.Profile != nil {
		p := domain.TutorProfile{
			Title:        d.Profile.Title,
			Bio:          d.Profile.Bio,
			Location:     d.Profile.Location,
			Phone:        d.Profile.Phone,
			Education:    domain.Entries(d.Profile.Education),
			Subjects:     domain.Entries(d.Profile.Subjects),
			Experience:   domain.Entries(d.Profile.Experience),
			Verified:     d.Profile.Verified,
			Rating:       d.Profile.Rating,
			TotalReviews: d.Profile.TotalReviews,
		}.Normalized()
		u.Profile = &p
	}
	return u
}
