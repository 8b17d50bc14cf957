package config

import (
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
)

const (
	DBPath = "entities.db"
)

func ExpandHomePath(path string) string {
	res, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}
	return res
}

func ExpandDBPath(homePath string) string {
	return path.Join(homePath, DBPath)
}

func InitDBDir(homePath string) error {
	return os.MkdirAll(ExpandDBPath(homePath), 0700)
}
