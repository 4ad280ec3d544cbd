package mongo

import (
	"context"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

var _ domain.UserRepository = (*UserRepository)(nil)

type userDocument struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"fullName"`
	MobileNumber string    `bson:"mobileNumber"`
	PasswordHash string    `bson:"password"`
	RefreshToken string    `bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique mobile number index and the full name
// lookup index. It is safe to call on every start.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mobileNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "fullName", Value: 1}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create user indexes")
	}
	return nil
}

func (r *UserRepository) FindByIdentity(ctx context.Context, fullName, mobileNumber string) (*domain.User, error) {
	if mobileNumber != "" {
		user, err := r.findOne(ctx, bson.M{"mobileNumber": mobileNumber})
		if err != nil || user != nil {
			return user, err
		}
	}
	if fullName != "" {
		opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		return r.findOne(ctx, bson.M{"fullName": fullName}, opts)
	}
	return nil, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return autherror.Wrap(autherror.ErrUserAlreadyExists, err)
		}
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	if res.MatchedCount == 0 {
		return autherror.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, refreshTokenUpdate(token)); err != nil {
		return errors.Wrap(err, "failed to set refresh token")
	}
	return nil
}

func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "refreshToken": expected}, refreshTokenUpdate(next))
	if err != nil {
		return false, errors.Wrap(err, "failed to rotate refresh token")
	}
	return res.MatchedCount == 1, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find user")
	}
	return doc.toDomain(), nil
}

// refreshTokenUpdate unsets the field for an empty token so a cleared
// session leaves no refreshToken key behind.
func refreshTokenUpdate(token string) bson.M {
	now := time.Now().UTC()
	if token == "" {
		return bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": now},
		}
	}
	return bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": now}}
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		FullName:     u.FullName,
		MobileNumber: u.MobileNumber,
		PasswordHash: u.PasswordHash,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		FullName:     d.FullName,
		MobileNumber: d.MobileNumber,
		PasswordHash: d.PasswordHash,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
