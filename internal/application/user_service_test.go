package application

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/mailer"
)

func TestUserService_ProfileOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")
	bob := f.register(t, "bob@x.com")

	me, err := f.users.Me(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", me.Email)

	_, err = f.users.GetProfile(ctx, bob, ann.UserID)
	requireKind(t, apperror.KindForbidden, err)

	_, err = f.users.UpdateProfile(ctx, bob, ann.UserID, UpdateProfileInput{FirstName: ptr("Bob")})
	requireKind(t, apperror.KindForbidden, err)

	err = f.users.ChangePassword(ctx, bob, ann.UserID, "newpassword")
	requireKind(t, apperror.KindForbidden, err)

	err = f.users.Delete(ctx, bob, ann.UserID)
	requireKind(t, apperror.KindForbidden, err)

	_, err = f.users.Me(ctx, entity.Anonymous())
	requireKind(t, apperror.KindUnauthorized, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")
	f.register(t, "bob@x.com")

	_, err := f.users.UpdateProfile(ctx, ann, ann.UserID, UpdateProfileInput{Email: ptr("BOB@x.com")})
	requireKind(t, apperror.KindConflict, err)

	_, err = f.users.UpdateProfile(ctx, ann, ann.UserID, UpdateProfileInput{LastName: ptr(" ")})
	requireKind(t, apperror.KindInvalidInput, err)

	u, err := f.users.UpdateProfile(ctx, ann, ann.UserID, UpdateProfileInput{Email: ptr("ANN@x.com")})
	require.NoError(t, err, "changing only the case of your own email is allowed")
	assert.Equal(t, "ANN@x.com", u.Email)

	u, err = f.users.UpdateProfile(ctx, ann, ann.UserID, UpdateProfileInput{FirstName: ptr(" Annie "), Email: ptr("annie@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.FirstName)
	assert.Equal(t, "Test", u.LastName)
	assert.Equal(t, "annie@x.com", u.Email)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")

	err := f.users.ChangePassword(ctx, ann, ann.UserID, "short")
	requireKind(t, apperror.KindInvalidInput, err)

	require.NoError(t, f.users.ChangePassword(ctx, ann, ann.UserID, "brand-new-password"))

	_, err = f.auth.Login(ctx, "ann@x.com", "password123")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = f.auth.Login(ctx, "ann@x.com", "brand-new-password")
	assert.NoError(t, err)

	last := f.publisher.jobs[f.publisher.count()-1].(mailer.EmailJob)
	assert.Equal(t, mailer.TemplatePasswordChanged, last.Template)
}

func TestUserService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")
	p := f.plan(t, ann, "Exams", "2026-01-01", "2026-01-02")
	e, err := f.events.Create(ctx, ann, p.ID, eventInput("Lecture", "2026-01-01T09:00:00Z", "2026-01-01T10:00:00Z"))
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, ann, ann.UserID))

	_, err = f.store.Plans().GetByID(ctx, p.ID)
	assert.Error(t, err)
	_, err = f.store.Events().GetByID(ctx, e.ID)
	assert.Error(t, err)
	assert.NotContains(t, f.index.docs, p.ID)

	// the token still verifies, but the account is gone
	_, err = f.users.Me(ctx, ann)
	requireKind(t, apperror.KindNotFound, err)
}

// pngHeader is the eight byte PNG signature followed by an IHDR chunk start.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUserService_UploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")
	img := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x42}, 1024)...)

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	_, err := f.users.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(gif), int64(len(gif)))
	requireKind(t, apperror.KindInvalidInput, err)

	_, err = f.users.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(img), MaxAvatarBytes+1)
	requireKind(t, apperror.KindInvalidInput, err)

	u, err := f.users.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(img), int64(len(img)))
	require.NoError(t, err)
	require.Len(t, f.avatars.paths, 1)
	assert.True(t, strings.HasPrefix(f.avatars.paths[0], "avatars/"))
	assert.True(t, strings.HasSuffix(f.avatars.paths[0], ".png"))
	assert.Equal(t, "https://storage.example/"+f.avatars.paths[0], u.AvatarURL)
	assert.Equal(t, "image/png", f.avatars.types[0])
	assert.Equal(t, img, f.avatars.bodies[0], "sniffed bytes must still be uploaded")

	f.avatars.err = errBoom
	_, err = f.users.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(img), int64(len(img)))
	requireKind(t, apperror.KindUnavailable, err)

	noStore := NewUserService(f.store.Users(), f.hasher, nil, nil, nil, nil, nil)
	_, err = noStore.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(img), int64(len(img)))
	requireKind(t, apperror.KindUnavailable, err)
}

func TestUserService_UploadAvatarChecksContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")

	tests := []struct {
		name string
		body []byte
		ok   bool
		ext  string
	}{
		{name: "html", body: []byte("<!DOCTYPE html><html><script>alert(1)</script></html>")},
		{name: "svg", body: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)},
		{name: "plain text", body: []byte("definitely an image")},
		{name: "jpeg", body: []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), ok: true, ext: ".jpg"},
		{name: "webp", body: []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), ok: true, ext: ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(f.avatars.paths)
			_, err := f.users.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(tt.body), int64(len(tt.body)))
			if !tt.ok {
				requireKind(t, apperror.KindInvalidInput, err)
				assert.Len(t, f.avatars.paths, before, "nothing may reach the bucket")
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(f.avatars.paths[before], tt.ext))
		})
	}
}

// vanishingUsers reports the row as gone on write, as if the account was
// deleted between the ownership check and the update.
type vanishingUsers struct{ repository.UserRepository }

func (vanishingUsers) Update(context.Context, *entity.User) error { return repository.ErrNotFound }

func TestUserService_WritesToDeletedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")
	img := append(append([]byte{}, pngHeader...), 0x00)

	svc := NewUserService(f.store.Users(), f.hasher, f.avatars, nil, nil, nil, nil)
	svc.Repo = vanishingUsers{f.store.Users()}

	_, err := svc.UpdateProfile(ctx, ann, ann.UserID, UpdateProfileInput{FirstName: ptr("Annie")})
	requireKind(t, apperror.KindNotFound, err)

	err = svc.ChangePassword(ctx, ann, ann.UserID, "brand-new-password")
	requireKind(t, apperror.KindNotFound, err)

	_, err = svc.UploadAvatar(ctx, ann, ann.UserID, bytes.NewReader(img), int64(len(img)))
	requireKind(t, apperror.KindNotFound, err)
}
