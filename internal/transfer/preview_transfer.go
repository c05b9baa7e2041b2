package transfer

type PreviewRequest struct {
	Prompt       string   `json:"prompt"`
	ContentTypes []string `json:"content_types"`
}

type CaptionDraft struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

type YouTubeDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type PreviewResponse struct {
	ShortVideo *CaptionDraft `json:"short_video"`
	LongVideo  *CaptionDraft `json:"long_video"`
	YouTube    *YouTubeDraft `json:"youtube"`
}
