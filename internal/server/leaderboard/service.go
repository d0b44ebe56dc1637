package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/cryptox"
	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server/blobs"
	"github.com/dmitrijs2005/lookboard/internal/server/models"
)

// DefaultCapacity is the board size used when none is configured.
const DefaultCapacity = 10

// Submission is one request to join the board. Image takes precedence over
// ImageData, which is a base64 payload or data URL.
type Submission struct {
	Identity  string
	Score     float64
	Secret    string
	Image     []byte
	ImageData string
}

type Options struct {
	Capacity int
	TieBreak TieBreak
	// Timeout bounds each remote call; zero leaves calls unbounded.
	Timeout time.Duration
}

// Service is the board's single writer. Add, Revoke and the prune that
// follows every insert run one at a time, so the duplicate check, the write
// and positional deletes never interleave.
type Service struct {
	mu sync.Mutex

	repo     Repository
	blobs    *blobs.Manager
	pruner   *Pruner
	capacity int
	timeout  time.Duration
	logger   logging.Logger

	hashSecret func(string) (string, error)
}

func NewService(repo Repository, blobMgr *blobs.Manager, opts Options, logger logging.Logger) *Service {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TieBreak == "" {
		opts.TieBreak = TieBreakEarliest
	}
	return &Service{
		repo:       repo,
		blobs:      blobMgr,
		pruner:     NewPruner(repo, opts.Capacity, opts.TieBreak, logger),
		capacity:   opts.Capacity,
		timeout:    opts.Timeout,
		logger:     logger.With("module", "leaderboard"),
		hashSecret: cryptox.HashSecret,
	}
}

func (s *Service) Capacity() int { return s.capacity }

// Submit is Add reported as a success flag and a message for the user.
func (s *Service) Submit(ctx context.Context, sub Submission) (bool, string) {
	err := s.Add(ctx, sub)
	return err == nil, Message(err)
}

// Add validates sub, rejects a taken identity, uploads the image, appends the
// entry and prunes the board. Image failures leave the entry without an
// image; prune failures are logged and the insert is kept.
func (s *Service) Add(ctx context.Context, sub Submission) error {
	identity := Normalize(sub.Identity)
	secret := Normalize(sub.Secret)
	if err := Validate(identity); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := Validate(secret); err != nil {
		return fmt.Errorf("secret: %w", err)
	}
	if math.IsNaN(sub.Score) || math.IsInf(sub.Score, 0) {
		return fmt.Errorf("score %v: %w", sub.Score, common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.list(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if Normalize(e.Identity) == identity {
			return fmt.Errorf("%q: %w", identity, common.ErrDuplicate)
		}
	}

	hash, err := s.hashSecret(secret)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}

	imageRef := s.upload(ctx, sub)

	entry := models.Entry{Identity: identity, Score: sub.Score, SecretHash: hash, ImageRef: imageRef}
	if err := s.add(ctx, entry); err != nil {
		if imageRef != "" {
			_ = s.deleteBlob(ctx, imageRef)
		}
		return err
	}

	if n, err := s.prune(ctx); err != nil {
		s.logger.Error(ctx, "prune failed, board may exceed capacity until the next insert",
			"error", err, "evicted", n)
	} else if n > 0 {
		s.logger.Info(ctx, "board pruned", "evicted", n)
	}
	return nil
}

// Revoke removes the caller's entry when identity and secret match. The
// identity is only normalized, so rows written before validation existed
// can still be removed.
func (s *Service) Revoke(ctx context.Context, identity, secret string) bool {
	if Normalize(identity) == "" || Normalize(secret) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.bound(ctx)
	defer cancel()
	ok, err := s.repo.Delete(ctx, identity, secret)
	if err != nil {
		s.logger.Error(ctx, "revoke failed", "identity", Normalize(identity), "error", err)
		return false
	}
	return ok
}

// Top returns up to n entries in rank order; n <= 0 yields none. It never
// fails; an unreachable store yields an empty list.
func (s *Service) Top(ctx context.Context, n int) []models.Entry {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.GetTop(ctx, n)
}

// Qualifies reports whether score would currently enter the board.
func (s *Service) Qualifies(ctx context.Context, score float64) bool {
	top := s.Top(ctx, s.capacity)
	if len(top) < s.capacity {
		return true
	}
	return score >= top[len(top)-1].Score
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) list(ctx context.Context) ([]models.Entry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

func (s *Service) add(ctx context.Context, e models.Entry) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.Add(ctx, e)
}

func (s *Service) prune(ctx context.Context) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.pruner.Prune(ctx)
}

func (s *Service) upload(ctx context.Context, sub Submission) string {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var (
		u   string
		err error
	)
	if len(sub.Image) > 0 {
		u, err = s.blobs.Upload(ctx, sub.Image)
	} else {
		u, err = s.blobs.UploadEncoded(ctx, sub.ImageData)
	}
	if err != nil {
		s.logger.Warn(ctx, "continuing without image", "error", err)
		return ""
	}
	return u
}

func (s *Service) deleteBlob(ctx context.Context, u string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.blobs.Delete(ctx, u)
}

// Message turns an Add error into text for the submitter.
func Message(err error) string {
	switch {
	case err == nil:
		return "Registered in the ranking."
	case errors.Is(err, common.ErrValidation):
		return "Name and password may only contain letters and digits."
	case errors.Is(err, common.ErrDuplicate):
		return "That name is already on the ranking."
	case errors.Is(err, common.ErrAuth):
		return "The ranking is unavailable right now."
	case errors.Is(err, common.ErrRemote):
		return "The ranking could not be updated. Please try again."
	}
	return "Registration failed."
}
