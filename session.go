// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cardlab

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/cardlab/dto"
	"github.com/zintix-labs/cardlab/errs"
	"github.com/zintix-labs/cardlab/sdk/blackjack"
	"github.com/zintix-labs/cardlab/spec"
)

const (
	defaultMaxSessions = 1024
	defaultSessionTTL  = 10 * time.Minute
)

// SessionStore 保存 HTTP 互動牌局（開局 / 補牌 / 停牌 / 查詢）。
//
// 每個 session 擁有自己的 Table（獨立產生器），彼此不共享牌序。
// 超過 ttl 沒有動作的 session 會在下次存取時被清掉。
type SessionStore struct {
	lab         *Lab
	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
	ttl         time.Duration
	seedmaker   *seedMaker
	now         func() time.Time
}

type session struct {
	mu       sync.Mutex
	id       string
	tid      spec.TID
	bet      int
	table    *Table
	round    *blackjack.Round
	lastSeen time.Time
}

func newSessionStore(l *Lab, maxSessions int, ttl time.Duration, seed int64) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		lab:         l,
		sessions:    make(map[string]*session),
		maxSessions: maxSessions,
		ttl:         ttl,
		seedmaker:   newSeedMaker(seed),
		now:         time.Now,
	}
}

// Start 在指定牌桌開一局並發好起手牌。
func (s *SessionStore) Start(tid spec.TID, bet int) (dto.SessionView, error) {
	ts, err := s.lab.TableSetting(tid)
	if err != nil {
		return dto.SessionView{}, errs.WrapWarn(err, "table id not found")
	}
	if bet == 0 {
		bet = ts.BetUnit
	}
	t, err := newTableWithSeed(ts, s.seedmaker.next())
	if err != nil {
		return dto.SessionView{}, err
	}
	if err := t.validBet(bet); err != nil {
		return dto.SessionView{}, err
	}
	r, err := t.Begin()
	if err != nil {
		return dto.SessionView{}, errs.Wrap(err, "deal failed")
	}

	now := s.now()
	ss := &session{
		id:       uuid.NewString(),
		tid:      tid,
		bet:      bet,
		table:    t,
		round:    r,
		lastSeen: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	if len(s.sessions) >= s.maxSessions {
		return dto.SessionView{}, errs.NewWarn("too many sessions")
	}
	s.sessions[ss.id] = ss
	return ss.view(), nil
}

func (s *SessionStore) Get(id string) (dto.SessionView, error) {
	return s.with(id, func(ss *session) error { return nil })
}

// Hit 玩家補一張；爆牌時牌局直接結束。
func (s *SessionStore) Hit(id string) (dto.SessionView, error) {
	return s.with(id, func(ss *session) error {
		_, err := ss.round.Hit()
		return err
	})
}

// Stand 玩家停牌，莊家補完牌後結算。
func (s *SessionStore) Stand(id string) (dto.SessionView, error) {
	return s.with(id, func(ss *session) error {
		return ss.round.Stand()
	})
}

// Delete 移除 session，不存在時回傳 false。
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len 目前保存的 session 數（含已結束但尚未過期者）。
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep 清掉所有過期 session，回傳清除數量。
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	n := 0
	for id, ss := range s.sessions {
		if now.Sub(ss.seen()) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, errs.NewWarn("session not found")
	}
	if s.now().Sub(ss.seen()) > s.ttl {
		delete(s.sessions, id)
		return nil, errs.NewWarn("session expired")
	}
	return ss, nil
}

func (s *SessionStore) with(id string, fn func(ss *session) error) (dto.SessionView, error) {
	ss, err := s.lookup(id)
	if err != nil {
		return dto.SessionView{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.lastSeen = s.now()
	if err := fn(ss); err != nil {
		return ss.view(), err
	}
	return ss.view(), nil
}

func (ss *session) seen() time.Time {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.lastSeen
}

func (ss *session) view() dto.SessionView {
	return dto.NewSessionView(ss.id, ss.tid, ss.bet, ss.round)
}
