package logger

import (
	"log/slog"
	"path"

	"github.com/fatih/color"
)

// ColorizeLevel paints the level attribute of a log record for terminal output.
//
// ColorizeLevel is a ReplaceAttr function for a [log/slog.Handler].
func ColorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	var paint func(string, ...any) string
	switch {
	case lvl >= slog.LevelError:
		paint = color.RedString
	case lvl >= slog.LevelWarn:
		paint = color.YellowString
	case lvl >= slog.LevelInfo:
		paint = color.BlueString
	default:
		paint = color.WhiteString
	}

	return slog.String(a.Key, paint("%s", lvl.String()))
}

// DeleteLevelAttr drops the level attribute from a log record.
func DeleteLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		return slog.Attr{}
	}

	return a
}

// DeleteMessageAttr drops the message attribute from a log record.
func DeleteMessageAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.MessageKey {
		return slog.Attr{}
	}

	return a
}

// TruncSourceAttr shortens the file of a source attribute
// to the file's name and the directory containing it.
func TruncSourceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.SourceKey {
		return a
	}

	src, ok := a.Value.Any().(*slog.Source)
	if !ok {
		return a
	}

	src.File = truncPath(src.File)
	return slog.Any(a.Key, src)
}

// truncPath trims a file path to its parent directory and the file.
//
//	/home/dev/gate/auth/client.go => auth/client.go
func truncPath(fp string) string {
	dir, file := path.Split(fp)
	if dir == "" {
		return file
	}

	return path.Join(path.Base(dir), file)
}
