// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/orderhub/locks"

// Connect 建立 ZooKeeper 会话。servers 格式为 "host1:2181,host2:2181"。
func Connect(servers string) (*zk.Conn, error) {
	conn, _, err := zk.Connect(strings.Split(servers, ","), 10*time.Second)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// LeaderLock 是基于临时顺序节点的分布式锁。
// outbox relay 用它做主备选举：只有持锁实例才会轮询 outbox 表，
// 避免多副本重复投递同一批事件。
type LeaderLock struct {
	conn     *zk.Conn
	path     string
	lockNode string
}

// NewLeaderLock 创建一个锁实例并确保锁路径存在。
func NewLeaderLock(conn *zk.Conn, resource string) (*LeaderLock, error) {
	path := lockRoot + "/" + resource
	if err := ensurePath(conn, path); err != nil {
		return nil, err
	}
	return &LeaderLock{conn: conn, path: path}, nil
}

// Acquire 阻塞直到成为持锁者。锁节点是临时节点，
// 持锁进程崩溃后会话过期，锁自动释放给下一个等待者。
func (l *LeaderLock) Acquire() error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("list lock children: %w", err)
		}
		sort.Strings(children)

		myNode := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNode == children[0] {
			return nil
		}

		// 监听前一个节点，它被删除时重新竞争
		prevIndex := -1
		for i, child := range children {
			if child == myNode {
				prevIndex = i - 1
				break
			}
		}
		if prevIndex < 0 {
			return errors.New("own lock node missing from children")
		}
		prevPath := l.path + "/" + children[prevIndex]

		exists, _, eventCh, err := l.conn.ExistsW(prevPath)
		if err != nil {
			return fmt.Errorf("watch previous node: %w", err)
		}
		if !exists {
			continue
		}
		<-eventCh
	}
}

// Release 删除自己的锁节点。
func (l *LeaderLock) Release() error {
	if l.lockNode == "" {
		return nil
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

func ensurePath(conn *zk.Conn, path string) error {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := ""
	for _, part := range parts {
		current += "/" + part
		_, err := conn.Create(current, []byte(""), 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("create path %s: %w", current, err)
		}
	}
	return nil
}
