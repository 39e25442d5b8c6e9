package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/puoklam/intersection-backend/db"
	"github.com/puoklam/intersection-backend/db/dbtest"
	"github.com/puoklam/intersection-backend/db/model"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func newUser(email string) *model.User {
	return &model.User{
		Email:          email,
		HashedPassword: "hash",
		Name:           "Kim",
		BirthYear:      2005,
		Region:         "Seoul",
		SchoolName:     "Hanbit High",
		SchoolType:     "high",
		AdmissionYear:  2020,
		IsActive:       true,
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	u := newUser("kim@example.com")
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotZero(t, u.ID)

	got, err := s.UserByEmail(ctx, "kim@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.IsActive)
	require.Nil(t, got.Detail)

	byID, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "kim@example.com", byID.Email)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, db.ErrNotFound)
	_, err = s.UserByID(ctx, 999)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newUser("kim@example.com")))
	require.ErrorIs(t, s.CreateUser(ctx, newUser("kim@example.com")), db.ErrEmailTaken)
}

func TestUpsertDetail(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := newUser("kim@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	d, err := s.UpsertDetail(ctx, u.ID, &model.UserDetail{Nickname: strp("bear"), ClubName: strp("chess")})
	require.NoError(t, err)
	require.Equal(t, u.ID, d.OwnerID)
	require.Equal(t, "bear", *d.Nickname)

	d2, err := s.UpsertDetail(ctx, u.ID, &model.UserDetail{Nickname: strp("fox")})
	require.NoError(t, err)
	require.Equal(t, d.ID, d2.ID)
	require.Equal(t, "fox", *d2.Nickname)
	require.Nil(t, d2.ClubName)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	require.Equal(t, "fox", *got.Detail.Nickname)
}

func TestListPostsPagination(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := newUser("kim@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreatePost(ctx, &model.Post{Title: fmt.Sprintf("t%d", i), Content: "c", OwnerID: u.ID}))
	}

	tests := []struct {
		skip, limit int
		want        []string
	}{
		{0, 100, []string{"t0", "t1", "t2", "t3", "t4"}},
		{1, 2, []string{"t1", "t2"}},
		{4, 10, []string{"t4"}},
		{5, 10, []string{}},
		{0, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("skip=%d,limit=%d", tt.skip, tt.limit), func(t *testing.T) {
			posts, err := s.ListPosts(ctx, tt.skip, tt.limit)
			require.NoError(t, err)
			titles := make([]string, 0, len(posts))
			for _, p := range posts {
				titles = append(titles, p.Title)
				require.Equal(t, u.ID, p.OwnerID)
			}
			require.Equal(t, tt.want, titles)
		})
	}
}

func TestFriendsAreDirected(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	a, b, c := newUser("a@example.com"), newUser("b@example.com"), newUser("c@example.com")
	for _, u := range []*model.User{a, b, c} {
		require.NoError(t, s.CreateUser(ctx, u))
	}

	_, err := s.AddFriend(ctx, a.ID, c.ID)
	require.NoError(t, err)
	_, err = s.AddFriend(ctx, a.ID, b.ID)
	require.NoError(t, err)
	// duplicate edge is stored but listed once
	_, err = s.AddFriend(ctx, a.ID, b.ID)
	require.NoError(t, err)

	friends, err := s.ListFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	require.Equal(t, b.ID, friends[0].ID)
	require.Equal(t, c.ID, friends[1].ID)

	back, err := s.ListFriends(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, back)
}

func TestCandidatesAndDetails(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	a, b := newUser("a@example.com"), newUser("b@example.com")
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))
	_, err := s.UpsertDetail(ctx, b.ID, &model.UserDetail{Nickname: strp("bee")})
	require.NoError(t, err)

	cands, err := s.Candidates(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	require.Equal(t, b.ID, cands[0].ID)
	require.Nil(t, cands[0].Detail)

	require.NoError(t, s.LoadDetails(ctx, cands))
	require.NotNil(t, cands[0].Detail)
	require.Equal(t, "bee", *cands[0].Detail.Nickname)
	require.NoError(t, s.LoadDetails(ctx, nil))
}

func TestDevices(t *testing.T) {
	s := dbtest.NewStore(t)
	ctx := context.Background()
	u := newUser("kim@example.com")
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.SaveDevice(ctx, u.ID, "ExponentPushToken[a]"))
	require.NoError(t, s.SaveDevice(ctx, u.ID, "ExponentPushToken[a]"))
	require.NoError(t, s.SaveDevice(ctx, u.ID, "ExponentPushToken[b]"))

	tokens, err := s.DeviceTokens(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"ExponentPushToken[a]", "ExponentPushToken[b]"}, tokens)
}
