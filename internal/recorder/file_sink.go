package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// JSONFileSink 以 JSON 行的形式追加写入文件
type JSONFileSink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

func NewJSONFileSink(path string) (*JSONFileSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create decision log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open decision log %s: %w", path, err)
	}
	return &JSONFileSink{path: path, file: file}, nil
}

func (s *JSONFileSink) Publish(_ context.Context, _ string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(data)
	return err
}

func (s *JSONFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
