package handlers

import (
	"html/template"
	"log"
	"net/http"
	"os"
)

type DocHandler struct{}

func NewDocHandler() *DocHandler {
	return &DocHandler{}
}

// ServePrivacyPolicy returns the static privacy policy page.
func (h *DocHandler) ServePrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	const privacyHtml = `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Privacy Policy - NestVista</title>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
			h1 { color: #2c3e50; border-bottom: 2px solid #eee; padding-bottom: 10px; }
			h2 { color: #34495e; margin-top: 30px; }
			.date { color: #7f8c8d; font-style: italic; margin-bottom: 20px; }
		</style>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<div class="date">Last updated: August 31, 2026</div>
		<p>NestVista is a real-estate marketplace connecting buyers with agents and agencies. This policy explains what we collect when you browse listings or follow agents.</p>
		<h2>1. Information We Collect</h2>
		<ul>
			<li>Account details supplied at sign-in (name, email)</li>
			<li>Device tokens, if you opt in to push notifications about new agent stories</li>
			<li>Media you upload to your agent profile (listing photos, story images and videos)</li>
		</ul>
		<h2>2. Stories</h2>
		<p>Agent stories are visible to all visitors for 24 hours after posting. The underlying media remains stored until the agent deletes it.</p>
		<h2>3. Contact</h2>
		<p>privacy@nestvista.com</p>
	</body>
	</html>
	`

	tmpl, err := template.New("privacy").Parse(privacyHtml)
	if err != nil {
		log.Printf("Failed to parse privacy template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl.Execute(w, nil)
}

// ServeTermsOfServices returns the static terms page.
func (h *DocHandler) ServeTermsOfServices(w http.ResponseWriter, r *http.Request) {
	const termsHtml = `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<title>Terms of Service - NestVista</title>
	</head>
	<body>
		<h1>Terms of Service</h1>
		<p>By using NestVista you agree not to upload media you do not own, and you accept that story media is publicly visible while current.</p>
		<p>Agents are responsible for the accuracy of their listings and stories.</p>
	</body>
	</html>
	`

	tmpl, err := template.New("terms").Parse(termsHtml)
	if err != nil {
		log.Printf("Failed to parse terms template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl.Execute(w, nil)
}

// GetAppMinVersion tells mobile clients the minimum supported build.
func (h *DocHandler) GetAppMinVersion(w http.ResponseWriter, r *http.Request) {
	androidMin := os.Getenv("ANDROID_MIN_VERSION")
	if androidMin == "" {
		androidMin = "1.0.0"
	}
	iosMin := os.Getenv("IOS_MIN_VERSION")
	if iosMin == "" {
		iosMin = "1.0.0"
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"android_min_version": androidMin,
		"ios_min_version":     iosMin,
	})
}
