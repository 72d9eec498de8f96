package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

// CassandraConfig holds connection settings for the message store.
type CassandraConfig struct {
	Hosts          []string      `mapstructure:"hosts"`
	Keyspace       string        `mapstructure:"keyspace"`
	Consistency    string        `mapstructure:"consistency"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// CassandraStore persists messages in two query tables: one partitioned by
// room, one by direct-conversation pair. Message ids are timeuuids, so
// clustering order is write order.
type CassandraStore struct {
	session *gocql.Session
}

// NewCassandraStore connects to the cluster and returns a ready store.
func NewCassandraStore(cfg CassandraConfig) (*CassandraStore, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.Timeout = cfg.Timeout

	switch cfg.Consistency {
	case "LOCAL_ONE":
		cluster.Consistency = gocql.LocalOne
	case "LOCAL_QUORUM":
		cluster.Consistency = gocql.LocalQuorum
	case "ONE":
		cluster.Consistency = gocql.One
	case "QUORUM":
		cluster.Consistency = gocql.Quorum
	default:
		cluster.Consistency = gocql.LocalOne
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}

	return &CassandraStore{session: session}, nil
}

func (s *CassandraStore) Persist(ctx context.Context, msg domain.Message) (domain.Message, error) {
	msg.ID = gocql.TimeUUID().String()
	msg.Timestamp = time.Now().UTC()

	var query string
	var args []interface{}

	if msg.IsDirect() {
		query = `INSERT INTO messages_by_pair
				 (pair, message_id, sender, sender_name, receiver, text, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`
		args = []interface{}{
			pairKey(msg.Sender, msg.Receiver),
			msg.ID, msg.Sender, msg.SenderName, msg.Receiver, msg.Text, msg.Timestamp,
		}
	} else {
		query = `INSERT INTO messages_by_room
				 (room, message_id, sender, sender_name, text, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`
		args = []interface{}{
			msg.Room, msg.ID, msg.Sender, msg.SenderName, msg.Text, msg.Timestamp,
		}
	}

	if err := s.session.Query(query, args...).WithContext(ctx).Exec(); err != nil {
		return domain.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

func (s *CassandraStore) LoadHistory(ctx context.Context, q HistoryQuery) ([]domain.Message, error) {
	q.Normalize()

	// Cassandra has no OFFSET; over-read the page window and slice.
	fetch := q.Limit + q.Offset

	var iter *gocql.Iter
	direct := q.Room == ""
	if direct {
		iter = s.session.Query(
			`SELECT message_id, sender, sender_name, receiver, text, created_at
			 FROM messages_by_pair
			 WHERE pair = ?
			 ORDER BY message_id DESC
			 LIMIT ?`,
			pairKey(q.Sender, q.Receiver), fetch,
		).WithContext(ctx).Iter()
	} else {
		iter = s.session.Query(
			`SELECT message_id, sender, sender_name, text, created_at
			 FROM messages_by_room
			 WHERE room = ?
			 ORDER BY message_id DESC
			 LIMIT ?`,
			q.Room, fetch,
		).WithContext(ctx).Iter()
	}

	var messages []domain.Message
	var msg domain.Message
	for {
		var ok bool
		if direct {
			ok = iter.Scan(&msg.ID, &msg.Sender, &msg.SenderName, &msg.Receiver, &msg.Text, &msg.Timestamp)
		} else {
			msg.Room = q.Room
			ok = iter.Scan(&msg.ID, &msg.Sender, &msg.SenderName, &msg.Text, &msg.Timestamp)
		}
		if !ok {
			break
		}
		messages = append(messages, msg)
		msg = domain.Message{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	if q.Offset >= len(messages) {
		return nil, nil
	}
	messages = messages[q.Offset:]
	if len(messages) > q.Limit {
		messages = messages[:q.Limit]
	}
	return messages, nil
}

func (s *CassandraStore) Close() error {
	s.session.Close()
	return nil
}

// pairKey builds the partition key for a direct conversation; both
// directions of the same pair share it.
func pairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "#")
}
