package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/mailer"
	"github.com/oksasatya/studypal/pkg/metrics"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 2 << 20

// sniffLen is how much of an upload is inspected to classify it.
const sniffLen = 512

var avatarTypes = []struct{ mime, ext string }{
	{"image/png", ".png"},
	{"image/jpeg", ".jpg"},
	{"image/webp", ".webp"},
}

var errNotAnImage = apperror.InvalidInput("avatar must be a png, jpeg or webp image")

// sniffAvatar classifies the upload by its leading bytes and returns a reader
// that still yields the whole stream. The client's declared type is not consulted.
func sniffAvatar(r io.Reader) (mime, ext string, body io.Reader, err error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", nil, err
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for _, t := range avatarTypes {
		if detected.Is(t.mime) {
			return t.mime, t.ext, io.MultiReader(bytes.NewReader(head), r), nil
		}
	}
	return "", "", nil, errNotAnImage
}

type UserService struct {
	Repo      repository.UserRepository
	Hasher    PasswordHasher
	Avatars   ObjectStore
	Index     PlanIndex
	Publisher JobPublisher
	Logger    *logrus.Logger

	guard Guard[*entity.User]
}

// NewUserService wires the service. avatars, index and publisher are optional.
func NewUserService(users repository.UserRepository, hasher PasswordHasher, avatars ObjectStore, index PlanIndex, publisher JobPublisher, m *metrics.Metrics, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:      users,
		Hasher:    hasher,
		Avatars:   avatars,
		Index:     index,
		Publisher: publisher,
		Logger:    logger,
		guard: Guard[*entity.User]{
			Resource: "user",
			Fetch:    users.GetByID,
			OwnerOf:  func(_ context.Context, u *entity.User) (int64, error) { return u.OwnerID(), nil },
			Metrics:  m,
		},
	}
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, caller entity.Identity) (*entity.User, error) {
	return s.guard.Require(ctx, caller, caller.UserID)
}

func (s *UserService) GetProfile(ctx context.Context, caller entity.Identity, id int64) (*entity.User, error) {
	return s.guard.Require(ctx, caller, id)
}

// UpdateProfileInput carries a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (s *UserService) UpdateProfile(ctx context.Context, caller entity.Identity, id int64, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, apperror.InvalidInput("email cannot be blank")
		}
		if !strings.EqualFold(email, u.Email) {
			taken, err := s.Repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, apperror.Internal(err)
			}
			if taken {
				return nil, apperror.Conflict("email already in use")
			}
		}
		u.Email = email
	}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return nil, apperror.InvalidInput("firstName cannot be blank")
		}
		u.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if v == "" {
			return nil, apperror.InvalidInput("lastName cannot be blank")
		}
		u.LastName = v
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		// lost a race with another writer claiming the same address
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.Conflict("email already in use")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(err)
	}
	return u, nil
}

// ChangePassword replaces the stored hash. Tokens already issued stay valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, caller entity.Identity, id int64, newPassword string) error {
	u, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return err
	}
	if utf8.RuneCountInString(newPassword) < helpers.MinPasswordLength {
		return errPasswordTooShort
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	u.PasswordHash = hash
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Internal(err)
	}

	if s.Publisher != nil {
		job := mailer.EmailJob{
			To:       u.Email,
			Subject:  "Your StudyPal password was changed",
			Template: mailer.TemplatePasswordChanged,
			Data:     map[string]any{"Name": u.FirstName},
		}
		if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("publish password changed email failed")
		}
	}
	return nil
}

// Delete removes the account together with its plans and events.
func (s *UserService) Delete(ctx context.Context, caller entity.Identity, id int64) error {
	u, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Internal(err)
	}
	if s.Index != nil {
		if err := s.Index.RemoveOwner(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("remove plans from search index failed")
		}
	}
	return nil
}

// UploadAvatar stores the image and points the profile at it. size is the declared
// length; the reader is capped at MaxAvatarBytes regardless. The image type is
// taken from the content, never from the client.
func (s *UserService) UploadAvatar(ctx context.Context, caller entity.Identity, id int64, r io.Reader, size int64) (*entity.User, error) {
	u, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if s.Avatars == nil {
		return nil, apperror.New(apperror.KindUnavailable, "avatar storage is not configured")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return nil, apperror.InvalidInput("avatar must be between 1 byte and 2 MiB")
	}
	contentType, ext, body, err := sniffAvatar(io.LimitReader(r, MaxAvatarBytes))
	if err != nil {
		if errors.Is(err, errNotAnImage) {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInvalidInput, "cannot read avatar", err)
	}

	objectPath := path.Join("avatars", strconv.FormatInt(u.ID, 10), uuid.NewString()+ext)
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, body)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnavailable, "avatar upload failed", err)
	}

	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal(err)
	}
	return u, nil
}
