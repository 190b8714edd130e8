//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStorageDir 确保 Android 存储目录存在并可写
//
// gdata 在 Android 上把数据放在 /data/data/{package}/ 下，但不会预先创建
// 应用子目录。此函数在 gdata.Open 之前调用，保证档案和花园快照可以写入。
//
// 参数：
//   - appName: gdata 的 AppName
func EnsureStorageDir(appName string) error {
	dir := GetStoragePath(appName)
	if dir == "" {
		return fmt.Errorf("failed to detect Android package name")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return checkWritable(dir)
}

// checkWritable 写入并删除一个探测文件
func checkWritable(dir string) error {
	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("garden"), 0644); err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// packageName 从 /proc/self/cmdline 读取应用包名
func packageName() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}

	// cmdline 以 NUL 分隔，第一段是包名
	for i, ch := range data {
		if ch == 0 || ch == '\n' {
			data = data[:i]
			break
		}
	}
	if len(data) == 0 {
		return "", fmt.Errorf("got empty output from /proc/self/cmdline")
	}
	return string(data), nil
}

// GetStoragePath 获取 Android 存储路径
func GetStoragePath(appName string) string {
	pkg, err := packageName()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", pkg, appName)
}
