package models

// BackgroundImage is one decorative background returned by the image proxy.
type BackgroundImage struct {
	ImageURL        string `json:"imageUrl"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographerUrl"`
	SourceURL       string `json:"sourceUrl"`
}
