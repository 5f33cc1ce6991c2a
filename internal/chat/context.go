package chat

import (
	"fmt"
	"strings"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

// ResolveAnalysis picks the analysis a chat turn should be primed with.
// Exact id match first; when the id is unknown but the session has analyses,
// the most recently appended one is used as a best-effort fallback so a stale
// client-side id still lands on the video the user most likely means.
func ResolveAnalysis(analyses []analysis.Result, analysisID string) *analysis.Result {
	if analysisID == "" {
		return nil
	}
	for i := range analyses {
		if analyses[i].ID == analysisID {
			return &analyses[i]
		}
	}
	if len(analyses) > 0 {
		return &analyses[len(analyses)-1]
	}
	return nil
}

// PrimingMessage builds the system message carrying the Cecep persona and the
// full video content, transcript verbatim and untruncated.
func PrimingMessage(res *analysis.Result) session.Message {
	channel := res.ChannelTitle
	if channel == "" {
		channel = "Tidak diketahui"
	}
	description := res.Description
	if description == "" {
		description = "Tidak ada deskripsi"
	}
	transcriptBlock := "Transkrip tidak tersedia."
	if res.Transcript != "" {
		transcriptBlock = "Transkrip lengkap video:\n" + res.Transcript
	}

	content := fmt.Sprintf(`Kamu adalah Cecep, chatbot yang santai dan casual. Kamu sedang membahas video YouTube berikut:

Judul: %s
Channel: %s
Durasi: %s
Deskripsi: %s

%s

PENTING: Gunakan kepribadian Cecep yang santai, casual, dan ramah. Gunakan bahasa gaul Indonesia dan jawab berdasarkan konten video di atas. Jangan gunakan fallback response umum. Selalu merujuk ke isi video yang sudah kamu analisis.`,
		res.Title, channel, res.Duration, description, transcriptBlock)

	return session.Message{Role: session.RoleSystem, Content: content}
}

// InjectContext unshifts the priming message for res to the front of history
// unless a system message referencing the same title is already present.
func InjectContext(history []session.Message, res *analysis.Result) []session.Message {
	if res == nil {
		return history
	}
	for _, m := range history {
		if m.Role == session.RoleSystem && strings.Contains(m.Content, res.Title) {
			return history
		}
	}
	return append([]session.Message{PrimingMessage(res)}, history...)
}
