package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"merac_backend/internal/domain"
	"merac_backend/internal/logger"
)

var ErrClosed = errors.New("userstore: store is closed")

// Снапшот всех пользователей. Один логический файл,
// каждая мутация - полный цикл чтение-изменение-запись.
type Snapshot struct {
	Users []*domain.User `json:"users"`
}

// поиск по id
func (s *Snapshot) FindByID(id string) *domain.User {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// поиск по email без учета регистра
func (s *Snapshot) FindByEmail(email string) *domain.User {
	for _, u := range s.Users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// поиск по реферальному коду
func (s *Snapshot) FindByReferralCode(code string) *domain.User {
	if code == "" {
		return nil
	}
	for _, u := range s.Users {
		if u.ReferralCode == code {
			return u
		}
	}
	return nil
}

type op struct {
	fn   func(*Snapshot) error
	done chan error
}

// Store хранит снапшот пользователей в json-файле.
// Все мутации сериализуются через единственного воркера: в каждый момент
// выполняется не больше одной операции, строго в порядке поступления.
// Ошибка операции возвращается только ее вызывающему, очередь продолжает
// разбираться.
type Store struct {
	path string
	ops  chan op

	mu     sync.Mutex
	closed bool
}

// Open открывает store и запускает воркера очереди
func Open(path string) *Store {
	s := &Store{
		path: path,
		ops:  make(chan op, 64),
	}
	go s.run()
	return s
}

// Close останавливает воркера; начатые операции довыполняются
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ops)
	}
}

// Update ставит мутацию в очередь и ждет ее завершения.
// fn получает свежезагруженный снапшот; если fn вернула nil,
// снапшот атомарно записывается на диск.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	o := op{fn: fn, done: make(chan error, 1)}
	s.ops <- o
	s.mu.Unlock()

	select {
	case err := <-o.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View выполняет read-only операцию над текущим снапшотом.
// Читает мимо очереди - как и исходные GET-ручки.
func (s *Store) View(fn func(*Snapshot) error) error {
	snap := s.load()
	return fn(snap)
}

// воркер очереди: одна операция за раз, FIFO
func (s *Store) run() {
	for o := range s.ops {
		snap := s.load()
		err := o.fn(snap)
		if err == nil {
			err = s.save(snap)
		}
		o.done <- err
	}
}

// load читает снапшот с диска.
// Нечитаемый или битый файл деградирует до пустого снапшота:
// доступность важнее, ошибка уходит в лог.
func (s *Store) load() *Snapshot {
	snap := &Snapshot{Users: []*domain.User{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("userstore: read failed, falling back to empty snapshot", "path", s.path, "error", err)
		}
		return snap
	}

	if err := json.Unmarshal(data, snap); err != nil {
		logger.Error("userstore: corrupt snapshot, falling back to empty", "path", s.path, "error", err)
		return &Snapshot{Users: []*domain.User{}}
	}
	if snap.Users == nil {
		snap.Users = []*domain.User{}
	}
	return snap
}

// save атомарно записывает снапшот (temp + rename)
func (s *Store) save(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
