package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// OpenAIKeyName OpenAI API Key 在存储中的名称
const OpenAIKeyName = "openai_api_key"

// Store 加密的键值存储，落盘为 JSON（值为密文）
type Store struct {
	mu   sync.Mutex
	path string
	key  *EncryptionKey
}

// NewStore 在 dir 下创建存储：dir/.secret_key 为密钥，dir/secrets.json 为数据
func NewStore(dir string) (*Store, error) {
	key, err := NewEncryptionKey(filepath.Join(dir, ".secret_key"))
	if err != nil {
		return nil, err
	}
	return &Store{
		path: filepath.Join(dir, "secrets.json"),
		key:  key,
	}, nil
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}
	return values, nil
}

// Get 读取并解密，不存在时返回空字符串
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	enc, ok := values[name]
	if !ok {
		return "", nil
	}
	return s.key.Decrypt(enc)
}

// Set 加密写入，value 为空时删除
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if value == "" {
		delete(values, name)
	} else {
		enc, err := s.key.Encrypt(value)
		if err != nil {
			return err
		}
		values[name] = enc
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	return nil
}
