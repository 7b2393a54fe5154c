package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/storage"
)

// Storage хранилище в памяти. Если указан файл, каждое изменение дописывается в него строкой json
type Storage struct {
	profiles map[uuid.UUID]map[string]string
	sync.Mutex
	file *os.File
}

// NewStorage создает хранилище и восстанавливает записи из storageFile. Пустое имя файла - только память
func NewStorage(storageFile string) (*Storage, error) {
	s := &Storage{
		profiles: make(map[uuid.UUID]map[string]string),
	}
	if storageFile == "" {
		return s, nil
	}
	profiles, err := restoreFromFile(storageFile)
	if err != nil {
		return nil, fmt.Errorf("создание хранилища. %w", err)
	}
	if profiles != nil {
		s.profiles = profiles
	}
	s.file, err = os.OpenFile(storageFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("создание хранилища. %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Get(ctx context.Context, profileID uuid.UUID, key string) (string, error) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	if value, ok := s.profiles[profileID][key]; ok {
		return value, nil
	}
	return "", storage.ErrKeyNotFound
}

func (s *Storage) Set(ctx context.Context, profileID uuid.UUID, key, value string) error {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.set(profileID, key, value)
}

func (s *Storage) Incr(ctx context.Context, profileID uuid.UUID, key string) (int64, error) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	var current int64
	if value, ok := s.profiles[profileID][key]; ok {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("значение \"%s\" не является счетчиком. %w", key, err)
		}
		current = n
	}
	current++
	if err := s.set(profileID, key, strconv.FormatInt(current, 10)); err != nil {
		return 0, err
	}
	return current, nil
}

func (s *Storage) Values(ctx context.Context, profileID uuid.UUID) (map[string]string, error) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	values := make(map[string]string, len(s.profiles[profileID]))
	for k, v := range s.profiles[profileID] {
		values[k] = v
	}
	return values, nil
}

func (s *Storage) Clear(ctx context.Context, profileID uuid.UUID) error {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	err := s.write(model.StorageRecord{
		ProfileID: profileID.String(),
		Cleared:   true,
	})
	if err != nil {
		return err
	}
	delete(s.profiles, profileID)
	return nil
}

// set вызывается под блокировкой. В памяти меняется только то, что уже записано в файл
func (s *Storage) set(profileID uuid.UUID, key, value string) error {
	err := s.write(model.StorageRecord{
		ProfileID: profileID.String(),
		Key:       key,
		Value:     value,
	})
	if err != nil {
		return err
	}
	values, ok := s.profiles[profileID]
	if !ok {
		values = make(map[string]string)
		s.profiles[profileID] = values
	}
	values[key] = value
	return nil
}

func (s *Storage) write(element model.StorageRecord) error {
	if s.file == nil {
		return nil
	}
	body, err := json.Marshal(element)
	if err != nil {
		return fmt.Errorf("сохранение елемента в файле. %w", err)
	}
	body = append(body, '\n')
	_, err = s.file.Write(body)
	if err != nil {
		return fmt.Errorf("сохранение елемента в файле. %w", err)
	}
	return nil
}

func restoreFromFile(filename string) (map[uuid.UUID]map[string]string, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("восстановление записей из файла. %w", err)
	}
	defer file.Close()

	profiles := make(map[uuid.UUID]map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		element := model.StorageRecord{}
		err = json.Unmarshal(raw, &element)
		if err != nil {
			slog.Error("раскодирование элемента", slog.String("ошибка", err.Error()))
			continue
		}
		profileID, err := uuid.Parse(element.ProfileID)
		if err != nil {
			slog.Error("раскодирование элемента", slog.String("ошибка", err.Error()))
			continue
		}
		if element.Cleared {
			delete(profiles, profileID)
			continue
		}
		if _, ok := profiles[profileID]; !ok {
			profiles[profileID] = make(map[string]string)
		}
		profiles[profileID][element.Key] = element.Value
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("восстановление записей из файла. %w", err)
	}
	return profiles, nil
}
