package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ispoms/oms-console/internal/core/domain"
)

const accountsCollection = "console_accounts"

// AccountRepository implements ports.AccountRepository using MongoDB.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type accountDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password_hash"`
	FirstName        string             `bson:"first_name"`
	LastName         string             `bson:"last_name"`
	Phone            string             `bson:"phone,omitempty"`
	RoleName         string             `bson:"role_name"`
	FederatedSubject string             `bson:"federated_subject,omitempty"`
	IsActive         bool               `bson:"is_active"`
	EmailVerified    bool               `bson:"email_verified"`
	CreatedAt        int64              `bson:"created_at"`
	UpdatedAt        int64              `bson:"updated_at"`
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		Email:            strings.ToLower(a.Email),
		PasswordHash:     a.PasswordHash,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Phone:            a.Phone,
		RoleName:         a.RoleName,
		FederatedSubject: a.FederatedSubject,
		IsActive:         a.IsActive,
		EmailVerified:    a.EmailVerified,
		CreatedAt:        a.CreatedAt.Unix(),
		UpdatedAt:        a.UpdatedAt.Unix(),
	}
}

func (d accountDoc) toAccount() *domain.Account {
	return &domain.Account{
		ID:               d.ID.Hex(),
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Phone:            d.Phone,
		RoleName:         d.RoleName,
		FederatedSubject: d.FederatedSubject,
		IsActive:         d.IsActive,
		EmailVerified:    d.EmailVerified,
		CreatedAt:        unixToTime(d.CreatedAt),
		UpdatedAt:        unixToTime(d.UpdatedAt),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := toDoc(account)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toAccount(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var doc accountDoc
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toAccount(), nil
}

func (r *AccountRepository) MarkEmailVerified(ctx context.Context, email string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": bson.M{"email_verified": true, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) BindFederatedSubject(ctx context.Context, email, subject string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": bson.M{"federated_subject": subject, "updated_at": time.Now().UTC().Unix()}},
	)
	if err != nil {
		return fmt.Errorf("bind federated subject: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	out := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAccount())
	}
	return out, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
