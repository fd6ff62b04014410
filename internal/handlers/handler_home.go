package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getIndex renders the landing page.
func getIndex(c *gin.Context) {
	render(c, http.StatusOK, "index", nil)
}

type manifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Density string `json:"density,omitempty"`
}

type webManifest struct {
	ShortName       string         `json:"short_name"`
	Name            string         `json:"name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

var manifest = webManifest{
	ShortName:       "Explit",
	Name:            "Explit | Track and split shared expenses with friends and family.",
	StartURL:        "/",
	Display:         "standalone",
	BackgroundColor: "#22252d",
	ThemeColor:      "#793ef9",
	Icons: []manifestIcon{
		{Src: "/icons/favicon-32x32.png", Sizes: "32x32", Type: "image/png", Density: "0.75"},
		{Src: "/icons/android-icon-48x48.png", Sizes: "48x48", Type: "image/png", Density: "1.0"},
		{Src: "/icons/mstile-70x70.png", Sizes: "70x70", Type: "image/png", Density: "1.5"},
		{Src: "/icons/mstile-144x144.png", Sizes: "144x144", Type: "image/png", Density: "3.0"},
		{Src: "/icons/android-chrome-192x192.png", Sizes: "192x192", Type: "image/png", Density: "4.0"},
		{Src: "/icons/android-chrome-512x512.png", Sizes: "512x512", Type: "image/png"},
	},
}

// getManifest serves the web app manifest.
func getManifest(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=600")
	c.JSON(http.StatusOK, manifest)
}
