package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch 监听 .env 文件变更，变更后回调方可重新 Load 拿到新配置。
// 返回的函数用于停止监听。
//
// 监听目录而不是文件本身：编辑器保存时常用 rename+create，直接监听文件
// 会在第一次替换后失效。
func Watch(path string, onChange func()) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}
