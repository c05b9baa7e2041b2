package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

type DirectoryService interface {
	Fetch(ctx context.Context, token string) models.Directory
	FetchChecked(ctx context.Context, token string) (models.Directory, FetchErrors)
	Refresh(ctx context.Context, ws *Workspace) models.Directory
	Disconnect(ctx context.Context, ws *Workspace, accountID string) error
}

// FetchErrors holds the platforms whose account list could not be loaded.
type FetchErrors map[models.Platform]error

// Any reports whether one of platforms failed to load.
func (e FetchErrors) Any(platforms ...models.Platform) bool {
	for _, p := range platforms {
		if e[p] != nil {
			return true
		}
	}
	return false
}

type directoryService struct {
	backend AccountsBackend
	clock   Clock
}

func NewDirectoryService(backend AccountsBackend, clock Clock) DirectoryService {
	return &directoryService{backend: backend, clock: clock}
}

// Fetch loads the three platform lists in parallel. A platform that fails
// contributes no accounts; the others are still returned.
func (s *directoryService) Fetch(ctx context.Context, token string) models.Directory {
	dir, _ := s.FetchChecked(ctx, token)
	return dir
}

// FetchChecked is Fetch that also reports which platforms failed.
func (s *directoryService) FetchChecked(ctx context.Context, token string) (models.Directory, FetchErrors) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		facebook  []models.PlatformAccount
		instagram []models.PlatformAccount
		yt        []models.PlatformAccount
		errs      = FetchErrors{}
	)
	fail := func(platform models.Platform, err error) {
		slog.Warn("failed to load accounts", "platform", platform, "error", err)
		mu.Lock()
		errs[platform] = err
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		if facebook, err = s.fetchMeta(ctx, token, models.PlatformFacebook); err != nil {
			fail(models.PlatformFacebook, err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if instagram, err = s.fetchMeta(ctx, token, models.PlatformInstagram); err != nil {
			fail(models.PlatformInstagram, err)
		}
	}()
	go func() {
		defer wg.Done()
		rows, err := s.backend.YouTubeAccounts(ctx, token)
		if err != nil {
			fail(models.PlatformYouTube, err)
			return
		}
		for _, row := range rows {
			yt = append(yt, youtubeAccountFromRow(row))
		}
	}()
	wg.Wait()

	return models.NewDirectory(s.clock.now(), facebook, instagram, yt), errs
}

func (s *directoryService) fetchMeta(ctx context.Context, token string, platform models.Platform) ([]models.PlatformAccount, error) {
	rows, err := s.backend.MetaAccounts(ctx, token, platform)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.PlatformAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, metaAccountFromRow(platform, row))
	}
	return accounts, nil
}

func (s *directoryService) Refresh(ctx context.Context, ws *Workspace) models.Directory {
	dir := s.Fetch(ctx, ws.Token())
	ws.SetDirectory(dir)
	return dir
}

// Disconnect removes a Meta account on the backend. YouTube channels can
// only be revoked from the Google account.
func (s *directoryService) Disconnect(ctx context.Context, ws *Workspace, accountID string) error {
	acc, ok := ws.Directory().Lookup(accountID)
	if !ok {
		return ErrUnknownAccount
	}
	if acc.Kind != models.AccountKindMeta {
		return ErrUnsupported
	}
	if err := s.backend.DeleteMetaAccount(ctx, ws.Token(), acc.SocialAccountID()); err != nil {
		return err
	}
	s.Refresh(ctx, ws)
	return nil
}

func metaAccountFromRow(platform models.Platform, row transfer.MetaAccountRow) models.PlatformAccount {
	acc := models.NewMetaAccount(platform, models.MetaAccount{
		ID:          row.ID.String(),
		PageID:      row.PageID.String(),
		InstagramID: row.InstagramID.String(),
		Username:    row.Username,
	})
	acc.AccountName = row.Name
	acc.Connected = row.IsActive == nil || *row.IsActive
	acc.CreatedAt = row.CreatedAt.Time()
	acc.ProfileInfo = models.ProfileInfo{
		Username:   row.Username,
		PictureURL: row.ProfilePicture,
		Followers:  row.FollowersCount,
	}
	return acc
}

func youtubeAccountFromRow(row transfer.YouTubeAccountRow) models.PlatformAccount {
	acc := models.NewYouTubeAccount(models.YouTubeAccount{
		AccountID:    row.AccountID.String(),
		ChannelID:    row.ChannelID,
		ChannelTitle: row.ChannelTitle,
	})
	acc.Connected = row.IsActive == nil || *row.IsActive
	acc.CreatedAt = row.CreatedAt.Time()
	acc.ProfileInfo = models.ProfileInfo{
		PictureURL: row.ThumbnailURL,
		Followers:  row.SubscriberCount,
	}
	return acc
}
