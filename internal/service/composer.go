package service

import (
	"strings"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
	"google.golang.org/api/youtube/v3"
)

// Composer holds one draft and enforces the targeting and validation rules.
// It is not safe for concurrent use; Workspace serializes access.
type Composer struct {
	draft models.Draft
	dir   models.Directory
	clock Clock
}

func NewComposer(clock Clock) *Composer {
	return &Composer{
		draft: models.NewDraft(),
		dir:   models.NewDirectory(time.Time{}),
		clock: clock,
	}
}

// SetDirectory replaces the selectable accounts. Selections for accounts that
// disappeared are dropped together with their post types.
func (c *Composer) SetDirectory(dir models.Directory) {
	c.dir = dir
	kept := c.draft.SelectedAccounts[:0]
	for _, id := range c.draft.SelectedAccounts {
		if _, ok := dir.Mapping[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(c.draft.PlatformPostTypes, id)
		delete(c.draft.CallToAction, id)
	}
	c.draft.SelectedAccounts = kept
}

func (c *Composer) SetPrompt(prompt string) {
	c.draft.Prompt = prompt
}

// Locked reports whether a selected post type currently targets kind.
func (c *Composer) Locked(kind models.ContentKind) bool {
	for _, accountID := range c.draft.SelectedAccounts {
		m, ok := c.dir.Mapping[accountID]
		if !ok {
			continue
		}
		for _, typeID := range c.draft.PlatformPostTypes[accountID] {
			if pt, ok := models.LookupPostType(m.Platform, typeID); ok && pt.Box == kind {
				return true
			}
		}
	}
	return false
}

func (c *Composer) LockedBoxes() []models.ContentKind {
	var out []models.ContentKind
	for _, kind := range models.ContentKinds {
		if c.Locked(kind) {
			out = append(out, kind)
		}
	}
	return out
}

func (c *Composer) EditCaption(kind models.ContentKind, box models.CaptionBox) error {
	if kind != models.ContentShortVideo && kind != models.ContentLongVideo {
		return ErrUnknownBox
	}
	if c.Locked(kind) {
		return ErrBoxLocked
	}
	if kind == models.ContentShortVideo {
		c.draft.Boxes.ShortVideo = box
	} else {
		c.draft.Boxes.LongVideo = box
	}
	return nil
}

func (c *Composer) EditYouTube(snippet youtube.VideoSnippet) error {
	if c.Locked(models.ContentYouTube) {
		return ErrBoxLocked
	}
	c.draft.Boxes.YouTube = &youtube.VideoSnippet{
		Title:       snippet.Title,
		Description: snippet.Description,
		Tags:        snippet.Tags,
		CategoryId:  snippet.CategoryId,
	}
	return nil
}

// ApplyPreview fills boxes from generated drafts. Generated content may
// overwrite locked boxes.
func (c *Composer) ApplyPreview(p *transfer.PreviewResponse) {
	if p == nil {
		return
	}
	if p.ShortVideo != nil {
		c.draft.Boxes.ShortVideo = models.CaptionBox{Caption: p.ShortVideo.Caption, Hashtags: p.ShortVideo.Hashtags}
	}
	if p.LongVideo != nil {
		c.draft.Boxes.LongVideo = models.CaptionBox{Caption: p.LongVideo.Caption, Hashtags: p.LongVideo.Hashtags}
	}
	if p.YouTube != nil {
		snippet := &youtube.VideoSnippet{Title: p.YouTube.Title, Description: p.YouTube.Description, Tags: p.YouTube.Tags}
		if c.draft.Boxes.YouTube != nil {
			snippet.CategoryId = c.draft.Boxes.YouTube.CategoryId
		}
		c.draft.Boxes.YouTube = snippet
	}
}

// PreviewKinds lists the boxes a generation request should fill: the
// targeted ones, or all of them when nothing is targeted yet.
func (c *Composer) PreviewKinds() []string {
	var kinds []string
	for _, k := range c.LockedBoxes() {
		kinds = append(kinds, string(k))
	}
	if len(kinds) == 0 {
		for _, k := range models.ContentKinds {
			kinds = append(kinds, string(k))
		}
	}
	return kinds
}

func (c *Composer) AttachMedia(item models.MediaItem) {
	c.draft.Media = append(c.draft.Media, item)
}

// RemoveMedia detaches an item. When the last video goes, post types that
// need a video are deselected.
func (c *Composer) RemoveMedia(id string) (models.MediaItem, error) {
	for i, item := range c.draft.Media {
		if item.ID != id {
			continue
		}
		c.draft.Media = append(c.draft.Media[:i], c.draft.Media[i+1:]...)
		if !models.HasVideo(c.draft.Media) {
			c.pruneVideoOnly()
		}
		return item, nil
	}
	return models.MediaItem{}, ErrUnknownMedia
}

func (c *Composer) pruneVideoOnly() {
	for accountID, types := range c.draft.PlatformPostTypes {
		m, ok := c.dir.Mapping[accountID]
		if !ok {
			continue
		}
		kept := types[:0]
		for _, typeID := range types {
			if pt, ok := models.LookupPostType(m.Platform, typeID); ok && pt.RequiresVideo {
				continue
			}
			kept = append(kept, typeID)
		}
		c.draft.PlatformPostTypes[accountID] = kept
	}
}

// ToggleAccount selects or deselects an account and returns the new state.
// Deselecting forgets the account's post types and call to action.
func (c *Composer) ToggleAccount(accountID string) (bool, error) {
	if _, ok := c.dir.Mapping[accountID]; !ok {
		return false, ErrUnknownAccount
	}
	for i, id := range c.draft.SelectedAccounts {
		if id == accountID {
			c.draft.SelectedAccounts = append(c.draft.SelectedAccounts[:i], c.draft.SelectedAccounts[i+1:]...)
			delete(c.draft.PlatformPostTypes, accountID)
			delete(c.draft.CallToAction, accountID)
			return false, nil
		}
	}
	c.draft.SelectedAccounts = append(c.draft.SelectedAccounts, accountID)
	c.draft.PlatformPostTypes[accountID] = []string{}
	return true, nil
}

// TogglePostType flips one post type for a selected account. A type that
// needs a video stays unselected while no video is attached.
func (c *Composer) TogglePostType(accountID, typeID string) (bool, error) {
	m, ok := c.dir.Mapping[accountID]
	if !ok {
		return false, ErrUnknownAccount
	}
	if !c.draft.IsSelected(accountID) {
		return false, ErrAccountNotSelected
	}
	pt, ok := models.LookupPostType(m.Platform, typeID)
	if !ok {
		return false, ErrUnknownPostType
	}

	types := c.draft.PlatformPostTypes[accountID]
	for i, t := range types {
		if t == typeID {
			c.draft.PlatformPostTypes[accountID] = append(types[:i], types[i+1:]...)
			return false, nil
		}
	}
	if pt.RequiresVideo && !models.HasVideo(c.draft.Media) {
		return false, ErrVideoRequired
	}
	c.draft.PlatformPostTypes[accountID] = append(types, typeID)
	return true, nil
}

func (c *Composer) SetCallToAction(accountID, cta string) error {
	if !c.draft.IsSelected(accountID) {
		return ErrAccountNotSelected
	}
	cta = strings.TrimSpace(cta)
	if cta == "" {
		delete(c.draft.CallToAction, accountID)
		return nil
	}
	c.draft.CallToAction[accountID] = cta
	return nil
}

// SetScheduledTime accepts the zero time to clear the schedule.
func (c *Composer) SetScheduledTime(t time.Time) error {
	if !t.IsZero() && t.Before(EarliestSchedule(c.clock.now())) {
		return ErrScheduleTooSoon
	}
	c.draft.ScheduledTime = t
	return nil
}

// Validate applies the submission rules in order and returns the first
// failure. Media compatibility is checked separately by Build.
func (c *Composer) Validate() error {
	d := &c.draft
	if !d.Boxes.HasText() && len(d.Media) == 0 {
		return ErrMissingContent
	}
	if len(d.SelectedAccounts) == 0 {
		return ErrNoAccounts
	}
	if d.ScheduledTime.IsZero() {
		return ErrNoSchedule
	}
	if d.ScheduledTime.Before(EarliestSchedule(c.clock.now())) {
		return ErrScheduleTooSoon
	}

	var missing []string
	for _, id := range d.SelectedAccounts {
		if len(d.PlatformPostTypes[id]) == 0 {
			missing = append(missing, c.displayName(id))
		}
	}
	if len(missing) > 0 {
		return &MissingPostTypesError{Accounts: missing}
	}

	hasVideo := models.HasVideo(d.Media)
	for _, id := range d.SelectedAccounts {
		m, ok := c.dir.Mapping[id]
		if !ok {
			return ErrUnknownAccount
		}
		for _, typeID := range d.PlatformPostTypes[id] {
			pt, ok := models.LookupPostType(m.Platform, typeID)
			if !ok {
				return ErrUnknownPostType
			}
			if pt.RequiresVideo && !hasVideo {
				return ErrVideoRequired
			}
		}
	}
	return nil
}

// Incompatibilities checks the attached media against each selected account.
func (c *Composer) Incompatibilities() []MediaIssue {
	var issues []MediaIssue
	for _, id := range c.draft.SelectedAccounts {
		m, ok := c.dir.Mapping[id]
		if !ok {
			continue
		}
		if reasons := CheckCompatibility(m.Platform, c.draft.Media, c.draft.Boxes); len(reasons) > 0 {
			issues = append(issues, MediaIssue{
				AccountID:   id,
				AccountName: c.displayName(id),
				Platform:    m.Platform,
				Reasons:     reasons,
			})
		}
	}
	return issues
}

// Build validates the draft and flattens it into one entry per selected
// (account, post type). Incompatible accounts are only left out when
// confirmExclusions is set.
func (c *Composer) Build(confirmExclusions bool) (models.Submission, error) {
	if err := c.Validate(); err != nil {
		return models.Submission{}, err
	}

	excluded := map[string]bool{}
	if issues := c.Incompatibilities(); len(issues) > 0 {
		if !confirmExclusions {
			return models.Submission{}, &IncompatibleMediaError{Issues: issues}
		}
		for _, is := range issues {
			excluded[is.AccountID] = true
		}
	}

	sub := models.Submission{
		Prompt:        c.draft.Prompt,
		ScheduledTime: c.draft.ScheduledTime,
		Boxes:         c.draft.Boxes,
		Media:         append([]models.MediaItem(nil), c.draft.Media...),
	}
	for _, id := range c.draft.SelectedAccounts {
		if excluded[id] {
			sub.Excluded = append(sub.Excluded, id)
			continue
		}
		m := c.dir.Mapping[id]
		for _, typeID := range c.draft.PlatformPostTypes[id] {
			entry := models.PlatformEntry{
				Platform:        m.Platform,
				SocialAccountID: m.SocialAccountID,
				CallToAction:    c.draft.CallToAction[id],
			}
			if m.Platform != models.PlatformYouTube {
				entry.Type = typeID
			}
			sub.Entries = append(sub.Entries, entry)
		}
	}
	if len(sub.Entries) == 0 {
		return models.Submission{}, ErrNoCompatibleTargets
	}
	return sub, nil
}

// Reset discards the draft and returns its media so the caller can release
// the staged files.
func (c *Composer) Reset() []models.MediaItem {
	media := c.draft.Media
	c.draft = models.NewDraft()
	return media
}

func (c *Composer) displayName(accountID string) string {
	if acc, ok := c.dir.Lookup(accountID); ok {
		return acc.DisplayName()
	}
	return accountID
}

type PostTypeOption struct {
	models.PostType
	Selected bool `json:"selected"`
	Disabled bool `json:"disabled"`
}

type TargetView struct {
	Account   models.PlatformAccount `json:"account"`
	Selected  bool                   `json:"selected"`
	PostTypes []PostTypeOption       `json:"post_types"`
}

type ComposerView struct {
	Draft            models.Draft         `json:"draft"`
	LockedBoxes      []models.ContentKind `json:"locked_boxes"`
	Targets          []TargetView         `json:"targets"`
	EarliestSchedule time.Time            `json:"earliest_schedule"`
}

// View renders the draft together with the selectable targets.
func (c *Composer) View() ComposerView {
	hasVideo := models.HasVideo(c.draft.Media)
	view := ComposerView{
		Draft:            c.snapshot(),
		LockedBoxes:      c.LockedBoxes(),
		Targets:          []TargetView{},
		EarliestSchedule: EarliestSchedule(c.clock.now()),
	}
	for _, acc := range c.dir.Accounts {
		t := TargetView{Account: acc, Selected: c.draft.IsSelected(acc.ID)}
		for _, pt := range models.PostTypesFor(acc.Platform) {
			selected := c.draft.HasPostType(acc.ID, pt.ID)
			t.PostTypes = append(t.PostTypes, PostTypeOption{
				PostType: pt,
				Selected: selected,
				Disabled: !t.Selected || (pt.RequiresVideo && !hasVideo && !selected),
			})
		}
		view.Targets = append(view.Targets, t)
	}
	return view
}

func (c *Composer) snapshot() models.Draft {
	d := c.draft
	d.Media = append([]models.MediaItem{}, c.draft.Media...)
	d.SelectedAccounts = append([]string{}, c.draft.SelectedAccounts...)
	d.PlatformPostTypes = make(map[string][]string, len(c.draft.PlatformPostTypes))
	for k, v := range c.draft.PlatformPostTypes {
		d.PlatformPostTypes[k] = append([]string{}, v...)
	}
	d.CallToAction = make(map[string]string, len(c.draft.CallToAction))
	for k, v := range c.draft.CallToAction {
		d.CallToAction[k] = v
	}
	if c.draft.Boxes.YouTube != nil {
		yt := *c.draft.Boxes.YouTube
		d.Boxes.YouTube = &yt
	}
	return d
}

// Draft returns a copy of the current draft.
func (c *Composer) Draft() models.Draft {
	return c.snapshot()
}
