package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/puoklam/intersection-backend/db/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

var detailColumns = []string{"transfer_history", "class_info", "club_name", "nickname", "memory_keywords"}

// Store runs every statement on a session bound to the caller's context,
// so a pooled connection is held only for the statement and a cancelled
// request aborts its query.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db}
}

func (s *Store) session(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	if err := s.session(ctx).Preload("Detail").First(u, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	u := &model.User{}
	if err := s.session(ctx).Preload("Detail").First(u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) emailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.session(ctx).Model(&model.User{}).Where("email = ?", email).Limit(1).Count(&n).Error
	return n > 0, err
}

// CreateUser inserts u. A taken email yields ErrEmailTaken, whether caught
// by the lookup or by the unique index when two registrations race.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if exists, err := s.emailExists(ctx, u.Email); err != nil {
		return fmt.Errorf("db: lookup email: %w", err)
	} else if exists {
		return ErrEmailTaken
	}
	if err := s.session(ctx).Omit(clause.Associations).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("db: create user: %w", err)
	}
	return nil
}

// UpsertDetail inserts the detail row of ownerID or overwrites every text
// field of the existing one.
func (s *Store) UpsertDetail(ctx context.Context, ownerID uint, d *model.UserDetail) (*model.UserDetail, error) {
	row := *d
	row.ID = 0
	row.OwnerID = ownerID
	err := s.session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns(detailColumns),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("db: upsert detail: %w", err)
	}
	out := &model.UserDetail{}
	if err := s.session(ctx).First(out, "owner_id = ?", ownerID).Error; err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	if err := s.session(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("db: create post: %w", err)
	}
	return nil
}

// ListPosts pages over posts in insertion order.
func (s *Store) ListPosts(ctx context.Context, skip, limit int) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	err := s.session(ctx).Order("id").Offset(skip).Limit(limit).Find(&posts).Error
	return posts, err
}

// Candidates returns every user except excludeID, without details.
func (s *Store) Candidates(ctx context.Context, excludeID uint) ([]model.User, error) {
	users := make([]model.User, 0)
	err := s.session(ctx).Where("id <> ?", excludeID).Order("id").Find(&users).Error
	return users, err
}

// LoadDetails attaches detail rows to users in a single query.
func (s *Store) LoadDetails(ctx context.Context, users []model.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	var details []model.UserDetail
	if err := s.session(ctx).Where("owner_id IN ?", ids).Find(&details).Error; err != nil {
		return err
	}
	byOwner := make(map[uint]*model.UserDetail, len(details))
	for i := range details {
		byOwner[details[i].OwnerID] = &details[i]
	}
	for i := range users {
		users[i].Detail = byOwner[users[i].ID]
	}
	return nil
}

func (s *Store) AddFriend(ctx context.Context, userID, friendID uint) (*model.Friend, error) {
	f := &model.Friend{UserID: userID, FriendID: friendID}
	if err := s.session(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		return nil, fmt.Errorf("db: add friend: %w", err)
	}
	return f, nil
}

// ListFriends returns the users reachable over userID's outgoing edges,
// each once, in id order.
func (s *Store) ListFriends(ctx context.Context, userID uint) ([]model.User, error) {
	targets := s.session(ctx).Model(&model.Friend{}).Select("friend_id").Where("user_id = ?", userID)
	users := make([]model.User, 0)
	err := s.session(ctx).Preload("Detail").Where("id IN (?)", targets).Order("id").Find(&users).Error
	return users, err
}

func (s *Store) SaveDevice(ctx context.Context, userID uint, token string) error {
	err := s.session(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Device{UserID: userID, PushToken: token}).Error
	if err != nil {
		return fmt.Errorf("db: save device: %w", err)
	}
	return nil
}

func (s *Store) DeviceTokens(ctx context.Context, userID uint) ([]string, error) {
	tokens := make([]string, 0)
	err := s.session(ctx).Model(&model.Device{}).Where("user_id = ?", userID).Order("id").Pluck("push_token", &tokens).Error
	return tokens, err
}
