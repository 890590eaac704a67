package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/report"
	"github.com/ganot/hrv-ingest/internal/failure"
)

const (
	// SessionMetaFile carries per-session annotations such as the doctor
	// comment.
	SessionMetaFile = "session.yaml"
	participantStem = "participant"
)

// SessionDir is one <root>/<user>/<date>/ folder and the files found in it.
type SessionDir struct {
	UserDir     string                 `json:"user_dir"`
	Dir         string                 `json:"dir"`
	Log         string                 `json:"log,omitempty"`
	Documents   map[report.Kind]string `json:"documents,omitempty"`
	Protocol    string                 `json:"protocol,omitempty"`
	Participant string                 `json:"participant,omitempty"`
	Meta        string                 `json:"meta,omitempty"`
	// Extra lists interval log candidates beyond the first.
	Extra []string `json:"extra,omitempty"`
}

// Discover walks root two levels deep and classifies the files of every
// session folder by name. Entries are returned in lexical order.
func Discover(root string) ([]SessionDir, error) {
	users, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &failure.NotFoundError{What: "ingest root", Path: root}
		}
		return nil, fmt.Errorf("reading ingest root: %w", err)
	}

	var out []SessionDir
	for _, u := range users {
		if !u.IsDir() || hidden(u.Name()) {
			continue
		}
		userDir := filepath.Join(root, u.Name())
		entries, err := os.ReadDir(userDir)
		if err != nil {
			return nil, fmt.Errorf("reading user folder: %w", err)
		}

		participantFile := ""
		for _, e := range entries {
			if !e.IsDir() && isParticipantFile(e.Name()) {
				participantFile = filepath.Join(userDir, e.Name())
				break
			}
		}

		for _, d := range entries {
			if !d.IsDir() || hidden(d.Name()) {
				continue
			}
			s, err := scanSession(filepath.Join(userDir, d.Name()))
			if err != nil {
				return nil, err
			}
			s.UserDir = userDir
			s.Participant = participantFile
			out = append(out, s)
		}
	}
	return out, nil
}

func scanSession(dir string) (SessionDir, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return SessionDir{}, fmt.Errorf("reading session folder: %w", err)
	}

	s := SessionDir{Dir: dir, Documents: map[report.Kind]string{}}
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || hidden(name) {
			continue
		}
		path := filepath.Join(dir, name)
		ext := strings.ToLower(filepath.Ext(name))

		if strings.EqualFold(name, SessionMetaFile) {
			s.Meta = path
			continue
		}
		kind, ok := report.KindForName(name)
		switch {
		case ok && kind == report.KindActivityProtocol && (ext == ".xlsx" || ext == ".csv"):
			s.Protocol = path
		case ok && kind != report.KindActivityProtocol && ext == ".txt":
			s.Documents[kind] = path
		case !ok && ext == ".txt":
			if s.Log == "" {
				s.Log = path
			} else {
				s.Extra = append(s.Extra, path)
			}
		}
	}
	return s, nil
}

func isParticipantFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return stem == participantStem && (ext == ".yaml" || ext == ".yml" || ext == ".xlsx")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
