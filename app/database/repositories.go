package database

// Repositories groups every repository over one connection.
type Repositories struct {
	Articles    *ArticleRepository
	Keywords    *KeywordRepository
	Patterns    *PatternRepository
	Preferences *PreferencesRepository
	Podcasts    *PodcastRepository
	Saved       *SavedRepository
}

func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Articles:    NewArticleRepository(db),
		Keywords:    NewKeywordRepository(db),
		Patterns:    NewPatternRepository(db),
		Preferences: NewPreferencesRepository(db),
		Podcasts:    NewPodcastRepository(db),
		Saved:       NewSavedRepository(db),
	}
}

// CurationView is the article and keyword access the curation pass needs.
type CurationView struct {
	*ArticleRepository
	*KeywordRepository
}

// FilterView is the keyword, pattern and preference access personalization needs.
type FilterView struct {
	*KeywordRepository
	*PatternRepository
	*PreferencesRepository
}

func (r *Repositories) CurationView() CurationView {
	return CurationView{ArticleRepository: r.Articles, KeywordRepository: r.Keywords}
}

func (r *Repositories) FilterView() FilterView {
	return FilterView{KeywordRepository: r.Keywords, PatternRepository: r.Patterns, PreferencesRepository: r.Preferences}
}
