package model

import "time"

type Resolution string

const (
	ResolveLocal  Resolution = "local"
	ResolveRemote Resolution = "remote"
)

func (r Resolution) Valid() bool {
	return r == ResolveLocal || r == ResolveRemote
}

type ConflictData struct {
	TaskID        string    `json:"taskId"`
	LocalVersion  Task      `json:"localVersion"`
	RemoteVersion Task      `json:"remoteVersion"`
	Timestamp     time.Time `json:"timestamp"`
}

// RemoteVariant строит синтетическую "чужую" правку задачи
func RemoteVariant(local Task) Task {
	remote := local
	remote.Title = local.Title + " (Remote)"
	remote.Description = local.Description + " - Modified by another user"
	remote.Version = local.Version + 1
	return remote
}

// Pick возвращает версию задачи, выбранную пользователем
func (c ConflictData) Pick(r Resolution) Task {
	if r == ResolveRemote {
		return c.RemoteVersion
	}
	return c.LocalVersion
}
