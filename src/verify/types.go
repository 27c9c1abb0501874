package verify

import "fmt"

// Modality is the kind of content being submitted. Each has its own wire
// encoding; all three share the response contract.
type Modality int

const (
	ModalityText Modality = iota
	ModalityURL
	ModalityFile
)

func (m Modality) String() string {
	switch m {
	case ModalityText:
		return "text"
	case ModalityURL:
		return "url"
	case ModalityFile:
		return "file"
	}
	return fmt.Sprintf("modality(%d)", int(m))
}

// Submission is a tagged payload for one of the three modalities. Use the
// Text, URL, and File constructors rather than building it by hand.
type Submission struct {
	Modality Modality
	Content  string
	Link     string
	Filename string
	Data     []byte
}

func Text(content string) Submission {
	return Submission{Modality: ModalityText, Content: content}
}

func URL(link string) Submission {
	return Submission{Modality: ModalityURL, Link: link}
}

func File(filename string, data []byte) Submission {
	return Submission{Modality: ModalityFile, Filename: filename, Data: data}
}

// Source is one piece of supporting evidence returned by the service. The
// relevance score arrives string-encoded and is passed through untouched.
type Source struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	RelevanceScore string `json:"relevance_score"`
}

// Result is the service's verdict, returned verbatim. Warnings records
// contract violations the client noticed (an out-of-range score is flagged,
// never clamped).
type Result struct {
	Status                string   `json:"status"`
	Summary               string   `json:"summary"`
	ClassificationScore   float64  `json:"classification_score"`
	ClassificationLabel   string   `json:"classification_label"`
	CredibilityAssessment string   `json:"credibility_assessment"`
	Sources               []Source `json:"sources"`
	Timestamp             string   `json:"timestamp"`

	Generation uint64   `json:"-"`
	Warnings   []string `json:"-"`
}
