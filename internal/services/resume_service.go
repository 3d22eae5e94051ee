package services

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"regexp"
	"strings"

	"shrikavin.dev/internal/models"
)

// ErrResumeMissing is returned when no resume file is available
var ErrResumeMissing = errors.New("resume not available")

// SaveHint is shown on handheld devices after the resume opens
const SaveHint = "PDF opened in new tab. Tap the share button (square with arrow) to save to your device."

const defaultResumeFilename = "Resume.pdf"

var appleHandheld = regexp.MustCompile(`iPad|iPhone|iPod`)

// Platform is the resume delivery class of a user agent
type Platform string

const (
	PlatformHandheld Platform = "handheld"
	PlatformDesktop  Platform = "desktop"
)

// DetectPlatform classifies a User-Agent header. Apple handhelds and
// Android phones cannot save a forced download and get the inline PDF.
func DetectPlatform(userAgent string) Platform {
	if appleHandheld.MatchString(userAgent) {
		return PlatformHandheld
	}
	if strings.Contains(userAgent, "Android") && strings.Contains(userAgent, "Mobile") {
		return PlatformHandheld
	}
	return PlatformDesktop
}

// ResumeLink holds the attributes of the resume button
type ResumeLink struct {
	Href     string `json:"href"`
	Target   string `json:"target,omitempty"`
	Rel      string `json:"rel,omitempty"`
	Download string `json:"download,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Handheld bool   `json:"handheld"`
}

// ResumeService serves the resume file
type ResumeService struct {
	path     string
	href     string
	filename string
}

// NewResumeService creates a ResumeService for the file at path
func NewResumeService(path string, profile models.Profile) *ResumeService {
	filename := profile.ResumeFilename
	if filename == "" {
		filename = defaultResumeFilename
	}
	return &ResumeService{path: path, href: "/resume", filename: filename}
}

// Filename is the name offered to downloads
func (s *ResumeService) Filename() string {
	return s.filename
}

// Link returns the button attributes for a user agent
func (s *ResumeService) Link(userAgent string) ResumeLink {
	if DetectPlatform(userAgent) == PlatformHandheld {
		return ResumeLink{
			Href:     s.href,
			Target:   "_blank",
			Rel:      "noopener noreferrer",
			Hint:     SaveHint,
			Handheld: true,
		}
	}
	return ResumeLink{Href: s.href, Download: s.filename}
}

// Disposition returns the Content-Disposition header for a user agent
func (s *ResumeService) Disposition(userAgent string) string {
	if DetectPlatform(userAgent) == PlatformHandheld {
		return "inline"
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": s.filename})
}

// Open opens the resume file. The caller closes it.
func (s *ResumeService) Open() (*os.File, os.FileInfo, error) {
	if s.path == "" {
		return nil, nil, ErrResumeMissing
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrResumeMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open resume: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat resume: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrResumeMissing
	}
	return f, info, nil
}
