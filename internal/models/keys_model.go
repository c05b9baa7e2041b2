package models

type APIKeySettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

// APIKeyForm tracks the AI provider key as loaded from the backend and as
// currently edited.
type APIKeyForm struct {
	Saved   APIKeySettings `json:"-"`
	Current APIKeySettings `json:"current"`
	Loaded  bool           `json:"loaded"`
	Saving  bool           `json:"saving"`
	HasKey  bool           `json:"has_key"`
}

func (f *APIKeyForm) Load(saved APIKeySettings, hasKey bool) {
	f.Saved = saved
	f.Current = saved
	f.HasKey = hasKey
	f.Loaded = true
}

func (f *APIKeyForm) Edit(next APIKeySettings) {
	f.Current = next
}

func (f *APIKeyForm) HasUnsavedChanges() bool {
	return f.Current != f.Saved
}

func (f *APIKeyForm) CanSave() bool {
	return f.Loaded && !f.Saving && f.HasUnsavedChanges() && f.Current.APIKey != ""
}

func (f *APIKeyForm) MarkSaved() {
	f.Saved = f.Current
	f.HasKey = f.Current.APIKey != ""
}

func (f *APIKeyForm) Clear() {
	f.Saved = APIKeySettings{Provider: f.Current.Provider}
	f.Current = f.Saved
	f.HasKey = false
}

type APIKeyFormView struct {
	Provider          string `json:"provider"`
	APIKey            string `json:"api_key"`
	HasKey            bool   `json:"has_key"`
	HasUnsavedChanges bool   `json:"has_unsaved_changes"`
	CanSave           bool   `json:"can_save"`
}

func (f *APIKeyForm) View() APIKeyFormView {
	return APIKeyFormView{
		Provider:          f.Current.Provider,
		APIKey:            f.Current.APIKey,
		HasKey:            f.HasKey,
		HasUnsavedChanges: f.HasUnsavedChanges(),
		CanSave:           f.CanSave(),
	}
}
