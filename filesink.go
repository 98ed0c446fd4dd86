package loguru

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileSink is a rotating, self-managing log file (spec.md §5), grounded
// on the FileSink class in original_source/loguru/__init__.py. Its path
// may contain {time}, {start_time}, {rotation_time}, {n}, and {n+1}
// placeholders, substituted fresh on every rotation.
type FileSink struct {
	pathTemplate string
	startTime    time.Time
	mode         int
	perm         os.FileMode

	rotation  RotationPolicy
	retention RetentionPolicy
	compress  CompressFunc
	nameRE    *regexp.Regexp

	mu           sync.Mutex
	file         *os.File
	filePath     string
	size         int64
	created      int
	rotationTime time.Time
}

// FileSinkOption configures a FileSink at construction.
type FileSinkOption func(*FileSink) error

// WithRotation sets the rotation trigger; see NewRotationPolicy for the
// accepted spec shapes.
func WithRotation(spec interface{}) FileSinkOption {
	return func(fs *FileSink) error {
		policy, limit, err := NewRotationPolicy(spec, fs.startTime)
		if err != nil {
			return err
		}
		fs.rotation = policy
		fs.rotationTime = limit
		return nil
	}
}

// WithRetention sets the backup-pruning policy; see NewRetentionPolicy.
func WithRetention(spec interface{}) FileSinkOption {
	return func(fs *FileSink) error {
		policy, err := NewRetentionPolicy(spec)
		if err != nil {
			return err
		}
		fs.retention = policy
		return nil
	}
}

// WithCompression sets the format backups are compressed into after
// rotation ("gz", "bz2", "xz", "lzma", or "zip"); see NewCompressFunc.
func WithCompression(format string) FileSinkOption {
	return func(fs *FileSink) error {
		fn, err := NewCompressFunc(format)
		if err != nil {
			return err
		}
		fs.compress = fn
		return nil
	}
}

// NewFileSink opens (creating as needed) the file sink described by
// pathTemplate and performs its first rotation, exactly as loguru's
// FileSink.__init__ calls self.rotate() once up front.
func NewFileSink(pathTemplate string, opts ...FileSinkOption) (*FileSink, error) {
	fs := &FileSink{
		pathTemplate: pathTemplate,
		startTime:    time.Now(),
		mode:         os.O_APPEND | os.O_CREATE | os.O_WRONLY,
		perm:         0644,
	}
	fs.nameRE = makeRegexFileName(filepath.Base(pathTemplate))

	for _, opt := range opts {
		if err := opt(fs); err != nil {
			return nil, err
		}
	}

	if err := fs.rotate(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Write implements io.Writer. When a rotation policy is configured it
// checks the trigger before appending (rotating_write); otherwise it
// appends directly.
func (fs *FileSink) Write(p []byte) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.rotation != nil && fs.rotation.ShouldRotate(time.Now(), fs.size, int64(len(p))) {
		if err := fs.rotateLocked(); err != nil {
			return 0, err
		}
	}
	n, err := fs.file.Write(p)
	fs.size += int64(n)
	if err != nil {
		return n, &SinkIOError{Op: "write", Path: fs.filePath, Err: err}
	}
	return n, nil
}

// Sync flushes the underlying file to disk.
func (fs *FileSink) Sync() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil
	}
	return fs.file.Sync()
}

// Close stops the sink, compressing the final file if a compression
// format was configured but no rotation policy ever ran (mirroring
// FileSink.stop's "compress on close" behavior for a never-rotated,
// always-compressed log).
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.stopLocked()
}

func (fs *FileSink) stopLocked() error {
	if fs.file == nil {
		return nil
	}
	path := fs.filePath
	if err := fs.file.Close(); err != nil {
		return &SinkIOError{Op: "close", Path: path, Err: err}
	}
	fs.file = nil
	fs.filePath = ""
	if fs.compress != nil && fs.rotation == nil {
		return fs.compress(path)
	}
	return nil
}

// Rotate forces an immediate rotation regardless of the configured
// trigger, useful for tests and for a manual "rotate now" admin hook.
func (fs *FileSink) Rotate() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.rotateLocked()
}

func (fs *FileSink) rotate() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.rotateLocked()
}

// rotateLocked implements FileSink.rotate: close the current file,
// compute the next path from the template, prune retained backups,
// shift existing numbered backups up by one, compress the file being
// rotated out, and open the new one. Caller must hold fs.mu.
func (fs *FileSink) rotateLocked() error {
	oldPath := fs.filePath
	if err := fs.stopLocked(); err != nil {
		return err
	}

	rawPath, err := fs.formatPath()
	if err != nil {
		return err
	}
	filePath, err := filepath.Abs(rawPath)
	if err != nil {
		return &SinkIOError{Op: "rotate", Path: rawPath, Err: err}
	}
	fileDir := filepath.Dir(filePath)
	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return &SinkIOError{Op: "mkdir", Path: fileDir, Err: err}
	}

	if fs.retention != nil {
		if err := fs.pruneRetained(fileDir); err != nil {
			return err
		}
	}

	if fs.created > 0 {
		if _, err := os.Stat(filePath); err == nil {
			newOldPath, err := fs.shiftBackups(filePath)
			if err != nil {
				return err
			}
			if filePath == oldPath {
				oldPath = newOldPath
			}
		}
	}

	if fs.compress != nil && oldPath != "" {
		if _, err := os.Stat(oldPath); err == nil {
			if err := fs.compress(oldPath); err != nil {
				return err
			}
		}
	}

	file, err := os.OpenFile(filePath, fs.mode, fs.perm)
	if err != nil {
		return &SinkIOError{Op: "open", Path: filePath, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return &SinkIOError{Op: "stat", Path: filePath, Err: err}
	}

	fs.file = file
	fs.filePath = filePath
	fs.size = info.Size()
	fs.created++
	return nil
}

func (fs *FileSink) pruneRetained(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &SinkIOError{Op: "scan", Path: dir, Err: err}
	}
	var logs []os.FileInfo
	for _, e := range entries {
		if e.IsDir() || !fs.nameRE.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, info)
	}
	for _, stale := range fs.retention.Prune(logs) {
		if err := os.Remove(filepath.Join(dir, stale.Name())); err != nil {
			return &SinkIOError{Op: "prune", Path: stale.Name(), Err: err}
		}
	}
	return nil
}

var backupSuffixRE = regexp.MustCompile(`(?i)(?:\.(\d+))?(\.(?:gz(?:ip)?|bz(?:ip)?2|xz|lzma|zip))?$`)

// shiftBackups renames filePath's existing numbered backups up by one
// (N -> N+1) and moves filePath itself to ".1", returning the path the
// just-rotated-out file now lives at.
func (fs *FileSink) shiftBackups(filePath string) (string, error) {
	dir := filepath.Dir(filePath)
	basename := filepath.Base(filePath)
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(basename) + `(?:\.(\d+))?(\.(?:gz(?:ip)?|bz(?:ip)?2|xz|lzma|zip))?$`)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &SinkIOError{Op: "scan", Path: dir, Err: err}
	}

	type backup struct {
		name string
		n    int
		ext  string
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || e.Name() == basename {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n := 0
		if m[1] != "" {
			n, _ = strconv.Atoi(m[1])
		}
		backups = append(backups, backup{name: e.Name(), n: n, ext: m[2]})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].n > backups[j].n })

	n := len(backups) + 1
	width := len(strconv.Itoa(n))
	for i, b := range backups {
		target := fmt.Sprintf("%s.%s%s", filePath, zeroPad(n-i, width), b.ext)
		if err := os.Rename(filepath.Join(dir, b.name), target); err != nil {
			return "", &SinkIOError{Op: "rename", Path: b.name, Err: err}
		}
	}
	newPath := fmt.Sprintf("%s.%s", filePath, zeroPad(1, width))
	if err := os.Rename(filePath, newPath); err != nil {
		return "", &SinkIOError{Op: "rename", Path: filePath, Err: err}
	}
	return newPath, nil
}

func zeroPad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// formatPath substitutes {time}, {start_time}, {rotation_time}, {n},
// and {n+1} in the path template. A {xxx:layout} suffix supplies a Go
// time layout for the time-valued placeholders; the default is the
// filesystem-safe "2006-01-02_15-04-05". This is a Go-native stand-in
// for pendulum's custom strftime-style format mini-language.
func (fs *FileSink) formatPath() (string, error) {
	const fileTimeLayout = "2006-01-02_15-04-05"
	now := time.Now()
	var b strings.Builder
	s := fs.pathTemplate
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '}')
		if end < 0 {
			return "", &ConfigError{Op: "path", Err: fmt.Errorf("unterminated placeholder in path %q", fs.pathTemplate)}
		}
		token := s[i+1 : i+end]
		i += end + 1

		name, layout, _ := strings.Cut(token, ":")
		switch name {
		case "time":
			b.WriteString(now.Format(orDefault(layout, fileTimeLayout)))
		case "start_time":
			b.WriteString(fs.startTime.Format(orDefault(layout, fileTimeLayout)))
		case "rotation_time":
			b.WriteString(fs.rotationTime.Format(orDefault(layout, fileTimeLayout)))
		case "n":
			b.WriteString(strconv.Itoa(fs.created))
		case "n+1":
			b.WriteString(strconv.Itoa(fs.created + 1))
		default:
			return "", &ConfigError{Op: "path", Err: fmt.Errorf("unknown path placeholder: %q", name)}
		}
	}
	return b.String(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// makeRegexFileName builds the pattern used to recognize this sink's own
// rotated files on disk: literal runs are escaped verbatim, each
// placeholder becomes ".*", and an optional numbered-backup suffix plus
// an optional compression extension are allowed at the end (mirrors
// make_regex_file_name).
func makeRegexFileName(fileName string) *regexp.Regexp {
	var pattern strings.Builder
	i := 0
	for i < len(fileName) {
		if fileName[i] == '{' {
			if end := strings.IndexByte(fileName[i:], '}'); end >= 0 {
				pattern.WriteString(".*")
				i += end + 1
				continue
			}
		}
		pattern.WriteString(regexp.QuoteMeta(string(fileName[i])))
		i++
	}
	pattern.WriteString(`(?:\.\d+)?`)
	pattern.WriteString(`(?:\.(?:gz(?:ip)?|bz(?:ip)?2|xz|lzma|zip))?`)
	return regexp.MustCompile("(?i)^" + pattern.String() + "$")
}
