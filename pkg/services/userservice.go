package services

import (
	"context"
	"strings"
	"time"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/internal/common"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userCollection *mongo.Collection
	tokens         *auth.TokenStore
}

func NewUserService(db *mongo.Database, tokens *auth.TokenStore) UserService {
	return &userService{
		userCollection: util.GetCollection(db, "User"),
		tokens:         tokens,
	}
}

func (s *userService) CreateUser(ctx context.Context, req models.CreateUserRequest) (primitive.ObjectID, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return primitive.NilObjectID, err
	}

	email := strings.ToLower(req.Email)
	count, err := s.userCollection.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"email": email},
		{"username": req.Username},
	}})
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "checking existing users")
	}
	if count > 0 {
		return primitive.NilObjectID, models.ErrDuplicateName
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "hashing password")
	}

	now := time.Now()
	user := models.User{
		ID:             primitive.NewObjectID(),
		Username:       req.Username,
		Email:          email,
		PasswordDigest: string(digest),
		Role:           models.RoleUser,
		Avatar:         common.DEFAULT_USER_AVATAR,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
		// The count check above races against the unique index.
		if isDuplicateKey(err) {
			return primitive.NilObjectID, models.ErrDuplicateName
		}
		return primitive.NilObjectID, errors.Wrap(err, "inserting user")
	}

	return user.ID, nil
}

func (s *userService) AuthenticateUser(ctx context.Context, req models.LoginRequest) (*models.User, string, int64, error) {
	if err := common.Validate.Struct(&req); err != nil {
		return nil, "", 0, err
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, "", 0, errors.Wrap(models.ErrUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, "", 0, errors.Wrap(err, "finding user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(req.Password)); err != nil {
		return nil, "", 0, errors.Wrap(models.ErrUnauthorized, "invalid email or password")
	}

	if !user.IsActive {
		return nil, "", 0, errors.Wrap(models.ErrForbidden, "account is disabled")
	}

	return s.issueToken(ctx, user)
}

func (s *userService) AuthenticateGoogleUser(ctx context.Context, idToken string) (*models.User, string, int64, error) {
	claimSet, err := auth.VerifyGoogleIDToken(idToken)
	if err != nil {
		return nil, "", 0, errors.Wrap(models.ErrUnauthorized, err.Error())
	}

	email := strings.ToLower(claimSet.Email)

	var user models.User
	err = s.userCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		avatar := common.DEFAULT_USER_AVATAR
		if claimSet.Picture != "" {
			avatar = claimSet.Picture
		}
		user = models.User{
			ID:        primitive.NewObjectID(),
			Username:  usernameFromEmail(email),
			Email:     email,
			Role:      models.RoleUser,
			Avatar:    avatar,
			IsActive:  true,
			GoogleSub: claimSet.Sub,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
			return nil, "", 0, errors.Wrap(err, "creating google user")
		}
	} else if err != nil {
		return nil, "", 0, errors.Wrap(err, "finding user")
	}

	if !user.IsActive {
		return nil, "", 0, errors.Wrap(models.ErrForbidden, "account is disabled")
	}

	return s.issueToken(ctx, user)
}

func (s *userService) issueToken(ctx context.Context, user models.User) (*models.User, string, int64, error) {
	token, expiresAt, err := auth.GenerateJWT(user, common.TOKEN_TTL)
	if err != nil {
		return nil, "", 0, errors.Wrap(err, "signing token")
	}

	session := auth.UserSession{
		UserId:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		ExpiresAt: time.Unix(expiresAt, 0),
	}
	if err := s.tokens.SaveSession(ctx, token, session, common.TOKEN_TTL); err != nil {
		return nil, "", 0, errors.Wrap(err, "storing session")
	}

	return &user, token, expiresAt, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	return s.tokens.Invalidate(ctx, token, common.TOKEN_TTL)
}

func (s *userService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}
	return &user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req models.UpdateProfileRequest) error {
	if err := common.Validate.Struct(&req); err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Username != nil {
		count, err := s.userCollection.CountDocuments(ctx, bson.M{"username": *req.Username, "_id": bson.M{"$ne": id}})
		if err != nil {
			return errors.Wrap(err, "checking username")
		}
		if count > 0 {
			return models.ErrDuplicateName
		}
		set["username"] = *req.Username
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}

	res, err := s.userCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *userService) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error {
	res, err := s.userCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"avatar": avatarURL, "updated_at": time.Now()}},
	)
	if err != nil {
		return errors.Wrap(err, "updating avatar")
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *userService) SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.userCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}},
	)
	if err != nil {
		return errors.Wrap(err, "updating user status")
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, pagination util.PaginationArgs) ([]models.User, int64, error) {
	total, err := s.userCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(pagination.Skip())).
		SetLimit(int64(pagination.Limit))
	cursor, err := s.userCollection.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, 0, errors.Wrap(err, "listing users")
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// isDuplicateKey reports whether a write failed against a unique index.
// Plain writes surface the code in a WriteException; writes inside a
// transaction can come back as a CommandError.
func isDuplicateKey(err error) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == common.MONGO_DUPLICATE_KEY_CODE {
				return true
			}
		}
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == common.MONGO_DUPLICATE_KEY_CODE {
		return true
	}
	return false
}

// usernameFromEmail derives a starter username for Google sign-ups; users can
// change it afterwards.
func usernameFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "user-" + auth.GenerateSecureToken(4)
	}
	return email[:at] + "-" + auth.GenerateSecureToken(2)
}
