package model

// Film 影片详情（聚合 SWAPI、TMDB 海报与 YouTube 预告片）
type Film struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Episode        int      `json:"episode"`
	Synopsis       string   `json:"synopsis"`
	ReleaseDate    string   `json:"release_date"` // YYYY-MM-DD
	Director       string   `json:"director"`
	Producers      []string `json:"producers"`
	CharacterIDs   []int    `json:"characters"`
	CharacterNames []string `json:"charactersnames"` // 与 CharacterIDs 顺序一致
	FilmAge        string   `json:"film_age"`
	PosterURL      string   `json:"moviePoster"`
	TrailerURL     string   `json:"movieTrailer"`
}

// FilmSummary 影片列表项
type FilmSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	PosterURL   string `json:"moviePoster"` // 指向 /api/movie/:name，由客户端延迟解析
}

// UnknownCharacter 未能解析的角色名
const UnknownCharacter = "Unknown"
