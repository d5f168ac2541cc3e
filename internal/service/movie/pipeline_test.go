package movie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"

	"moviegen/internal/config"
	"moviegen/internal/model/movie"
	"moviegen/internal/pkg/storage"
	jobrepo "moviegen/internal/repository/job"
)

// ── fakes ────────────────────────────────────────────────────────────

// fakeText 按系统提示词返回预置输出
type fakeText struct {
	mu            sync.Mutex
	calls         int
	sceneResponse string // 为空则返回合法场景 JSON
	generateErr   error  // 不为 nil 时所有调用返回该错误
}

const testSceneJSON = `{
  "Scene": {
    "Scene 1": {
      "Involving Characters": ["Character 1", "Character 2"],
      "Plot": "Character 1 和 Character 2 在艺术馆看画",
      "Scene Description": "明亮的展厅，暖色灯光",
      "Emotional Tone": "温馨",
      "Visual Style": "卡通可爱",
      "Key Props": ["画框", "长椅"],
      "Music and Sound Effects": "轻柔钢琴",
      "Cinematography Notes": "跟拍与特写混合"
    }
  }
}`

const testShotJSON = `{
  "Shot": {
    "Shot 1": {
      "Involving Characters": {
        "Character A": [0.05, 0.1, 0.45, 0.95],
        "Character B": [0.55, 0.1, 0.95, 0.95]
      },
      "Plot/Visual Description": "Character A 和 Character B 并排站在画前，抬头看画，神情专注",
      "Coarse Plot": "two characters looking at a painting",
      "Emotional Enhancement": "暖光强调温馨",
      "Shot Type": "medium shot",
      "Camera Movement": "slow push in",
      "Subtitles": {}
    },
    "Shot 2": {
      "Involving Characters": {},
      "Plot/Visual Description": "画框特写，暖色灯光，卡通画风",
      "Coarse Plot": "close-up of a painting",
      "Emotional Enhancement": "细节强化氛围",
      "Shot Type": "close-up",
      "Camera Movement": "static",
      "Subtitles": {}
    },
    "Shot 3": {
      "Involving Characters": {
        "Character A": [0.1, 0.2, 0.5, 0.9]
      },
      "Plot/Visual Description": "Character A 坐在长椅上休息，背景是展厅",
      "Coarse Plot": "a character resting on a bench",
      "Emotional Enhancement": "安静收尾",
      "Shot Type": "wide shot",
      "Camera Movement": "static",
      "Subtitles": {}
    }
  }
}`

const testBreakdownJSON = `{
  "Relationships": {"一二 - 布布": "Friends"},
  "Sub-Script": {
    "Sub-Script 1": {
      "Plot": "一二和布布一起逛艺术馆，看画、休息、拍照留念，气氛轻松愉快，两人有说有笑地走过一个个展厅",
      "Involving Characters": ["一二", "布布"],
      "Timeline": "下午",
      "Reason for Division": "艺术馆事件"
    },
    "Sub-Script 2": {
      "Plot": "回到家后布布给一二包饺子，擀皮、调馅、下锅，热气腾腾地端上桌，两人围坐一起吃得开心",
      "Involving Characters": ["一二", "布布"],
      "Timeline": "晚上",
      "Reason for Division": "包饺子事件"
    }
  }
}`

func (f *fakeText) Generate(_ context.Context, systemPrompt, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.generateErr != nil {
		return "", f.generateErr
	}
	switch systemPrompt {
	case directorScriptSystemPrompt:
		return "首先，两个角色走进展厅。接着，两人驻足看画。最后，镜头拉远收尾。", nil
	case screenwriterSystemPrompt:
		return testBreakdownJSON, nil
	case scenePlanningSystemPrompt:
		if f.sceneResponse != "" {
			return f.sceneResponse, nil
		}
		return testSceneJSON, nil
	case shotPlotCreateSystemPrompt:
		return testShotJSON, nil
	}
	return "", fmt.Errorf("unexpected system prompt")
}

func (f *fakeText) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeImage struct{}

func (fakeImage) GenerateKeyframe(context.Context, string, []string, string) ([]byte, error) {
	return []byte("jpeg-bytes"), nil
}

// fakeVideo 前 failFirst 次调用失败，之后成功
type fakeVideo struct {
	mu        sync.Mutex
	calls     int
	failFirst int
}

func (f *fakeVideo) GenerateVideoFromImage(context.Context, string, int, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFirst {
		return nil, fmt.Errorf("i2v transient failure %d", f.calls)
	}
	return []byte("mp4-bytes"), nil
}

// fakeConcat 记录输入并写出成片占位文件
type fakeConcat struct {
	mu    sync.Mutex
	clips []string
}

func (f *fakeConcat) ConcatWithCrossfade(_ context.Context, videoPaths []string, outputPath string, _ float64) error {
	f.mu.Lock()
	f.clips = append([]string{}, videoPaths...)
	f.mu.Unlock()
	return os.WriteFile(outputPath, []byte("final-mp4"), 0o644)
}

// fakeStorage 内存存储，只记录上传过的 key
type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.uploaded[key] = b
	f.mu.Unlock()
	return key, nil
}

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeStorage) GetPresignedUploadURL(context.Context, string, string, time.Duration) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (f *fakeStorage) GetPresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.example.com/" + key + "?sig=test", nil
}

func (f *fakeStorage) Delete(context.Context, string) error          { return nil }
func (f *fakeStorage) Exists(context.Context, string) (bool, error)  { return false, nil }
func (f *fakeStorage) GetStorageType() string                        { return "fake" }
func (f *fakeStorage) GetFileInfo(context.Context, string) (*storage.FileInfo, error) {
	return nil, fmt.Errorf("not implemented")
}

// recordingStore 记录每次进度更新，校验进度单调
type recordingStore struct {
	*jobrepo.MemoryStore
	mu       sync.Mutex
	progress []int
	steps    []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: jobrepo.NewMemoryStore()}
}

func (r *recordingStore) Update(ctx context.Context, id string, update *movie.JobUpdate) error {
	r.mu.Lock()
	if update.Progress != nil {
		r.progress = append(r.progress, *update.Progress)
	}
	if update.Step != nil {
		r.steps = append(r.steps, *update.Step)
	}
	r.mu.Unlock()
	return r.MemoryStore.Update(ctx, id, update)
}

// ── helpers ──────────────────────────────────────────────────────────

func newTestCharacterRoot(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "character_list")
	for _, name := range []string{"一二", "布布"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, f := range []string{"front.png", "side.jpg"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("png"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Pipeline.CharacterRoot = newTestCharacterRoot(t)
	cfg.Pipeline.JobsDir = filepath.Join(t.TempDir(), "jobs")
	cfg.Pipeline.FinalName = "final"
	cfg.Image.Size = "1024x512"
	cfg.Video.Duration = 5
	return cfg
}

type testEnv struct {
	cfg   *config.Config
	store *recordingStore
	text  *fakeText
	video *fakeVideo
	conc  *fakeConcat
	stor  *fakeStorage
}

func newTestEnv(t *testing.T) *testEnv {
	return &testEnv{
		cfg:   newTestConfig(t),
		store: newRecordingStore(),
		text:  &fakeText{},
		video: &fakeVideo{},
		conc:  &fakeConcat{},
		stor:  newFakeStorage(),
	}
}

func (e *testEnv) newPipeline(jobID string, opts RunOptions) *pipeline {
	bundle := &Bundle{
		Text:    e.text,
		Image:   fakeImage{},
		Video:   e.video,
		Concat:  e.conc,
		Storage: e.stor,
	}
	p := newPipeline(e.cfg, e.store, bundle, jobID, opts)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func testInput() *SubmitInput {
	return &SubmitInput{
		StoryTitle: "匹兹堡之旅",
		Events: []*EventInput{
			{Title: "我和宝宝一起去逛艺术馆啦"},
			{Title: "宝宝给我包饺子啦"},
		},
	}
}

// ── tests ────────────────────────────────────────────────────────────

func TestPipelineRun(t *testing.T) {
	Convey("完整流水线成功", t, func() {
		env := newTestEnv(t)
		p := env.newPipeline("job-ok", RunOptions{FinalName: "final"})
		_, err := env.store.Create(context.Background(), "job-ok")
		So(err, ShouldBeNil)

		err = p.Run(context.Background(), testInput())
		So(err, ShouldBeNil)

		Convey("任务终态为 done 且带下载链接", func() {
			job, gerr := env.store.Get(context.Background(), "job-ok")
			So(gerr, ShouldBeNil)
			So(job.Status, ShouldEqual, movie.JobStatusDone)
			So(job.Progress, ShouldEqual, 100)
			So(job.Step, ShouldEqual, "done")
			So(job.VideoURL, ShouldEqual, "https://cdn.example.com/jobs/job-ok/final.mp4?sig=test")
			So(job.Error, ShouldBeEmpty)
		})

		Convey("进度单调递增至 100", func() {
			So(len(env.store.progress), ShouldBeGreaterThan, 5)
			for i := 1; i < len(env.store.progress); i++ {
				So(env.store.progress[i], ShouldBeGreaterThanOrEqualTo, env.store.progress[i-1])
			}
			So(env.store.progress[len(env.store.progress)-1], ShouldEqual, 100)
		})

		Convey("中间产物落盘", func() {
			So(fileExists(p.storyConfigPath()), ShouldBeTrue)
			So(fileExists(p.synopsisPath()), ShouldBeTrue)
			So(fileExists(p.eventsDetailPath()), ShouldBeTrue)
			So(fileExists(p.subScriptPath()), ShouldBeTrue)
			So(fileExists(p.scenePath()), ShouldBeTrue)
			So(fileExists(p.shotPath()), ShouldBeTrue)
		})

		Convey("2 个事件 x 1 场景 x 3 镜 = 6 个片段", func() {
			So(len(env.conc.clips), ShouldEqual, 6)
		})

		Convey("成片以固定 key 上传", func() {
			_, ok := env.stor.uploaded["jobs/job-ok/final.mp4"]
			So(ok, ShouldBeTrue)
		})
	})

	Convey("ScenePlanning 输出不合法时任务失败", t, func() {
		env := newTestEnv(t)
		env.text.sceneResponse = `{"Scene": {"Scene 1": {"Plot": "缺了必备键"}}}`
		p := env.newPipeline("job-badscene", RunOptions{})
		_, err := env.store.Create(context.Background(), "job-badscene")
		So(err, ShouldBeNil)

		err = p.Run(context.Background(), testInput())
		So(err, ShouldNotBeNil)

		var stageErr *StageError
		So(errors.As(err, &stageErr), ShouldBeTrue)
		So(stageErr.Stage, ShouldEqual, "ScenePlanning")

		job, _ := env.store.Get(context.Background(), "job-badscene")
		So(job.Status, ShouldEqual, movie.JobStatusError)
		So(job.Error, ShouldContainSubstring, "ScenePlanning")
	})

	Convey("图生视频重试耗尽只丢片段不丢任务", t, func() {
		env := newTestEnv(t)
		env.video.failFirst = 3 // 第一镜的 3 次尝试全部失败
		p := env.newPipeline("job-i2v", RunOptions{FinalName: "final"})
		_, err := env.store.Create(context.Background(), "job-i2v")
		So(err, ShouldBeNil)

		var sleeps []time.Duration
		p.sleep = func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}

		err = p.Run(context.Background(), testInput())
		So(err, ShouldBeNil)

		Convey("按 30s/60s/120s 退避重试", func() {
			So(sleeps, ShouldResemble, []time.Duration{
				30 * time.Second, 60 * time.Second, 120 * time.Second,
			})
		})

		Convey("任务仍然完成，成片少一镜", func() {
			job, _ := env.store.Get(context.Background(), "job-i2v")
			So(job.Status, ShouldEqual, movie.JobStatusDone)
			So(len(env.conc.clips), ShouldEqual, 5)
		})
	})

	Convey("only-planning 只跑规划阶段", t, func() {
		env := newTestEnv(t)
		p := env.newPipeline("job-plan", RunOptions{OnlyPlanning: true})
		_, err := env.store.Create(context.Background(), "job-plan")
		So(err, ShouldBeNil)

		err = p.Run(context.Background(), testInput())
		So(err, ShouldBeNil)

		job, _ := env.store.Get(context.Background(), "job-plan")
		So(job.Status, ShouldEqual, movie.JobStatusDone)
		So(job.Step, ShouldEqual, "planning complete")

		So(fileExists(p.shotPath()), ShouldBeTrue)
		entries, _ := os.ReadDir(p.videoDir())
		So(len(entries), ShouldEqual, 0)
	})

	Convey("resume-from-shots 复用历史分镜结果", t, func() {
		env := newTestEnv(t)
		p := env.newPipeline("job-resume", RunOptions{ResumeFromShots: true, FinalName: "final"})
		_, err := env.store.Create(context.Background(), "job-resume")
		So(err, ShouldBeNil)

		Convey("Step_3 缺失时报 MissingArtifactError", func() {
			rerr := p.Run(context.Background(), nil)
			var missing *MissingArtifactError
			So(errors.As(rerr, &missing), ShouldBeTrue)
		})

		Convey("Step_3 已有时跳过全部规划 LLM 调用", func() {
			So(os.MkdirAll(p.resultsDir(), 0o755), ShouldBeNil)
			So(os.WriteFile(p.shotPath(), []byte(resumeBreakdownJSON), 0o644), ShouldBeNil)

			rerr := p.Run(context.Background(), nil)
			So(rerr, ShouldBeNil)
			So(env.text.callCount(), ShouldEqual, 0)

			job, _ := env.store.Get(context.Background(), "job-resume")
			So(job.Status, ShouldEqual, movie.JobStatusDone)
			So(len(env.conc.clips), ShouldEqual, 3)
		})
	})

	Convey("错误信息截断到末尾 3000 字符", t, func() {
		env := newTestEnv(t)
		env.text.generateErr = fmt.Errorf("%s", strings.Repeat("长错误", 2000))
		p := env.newPipeline("job-trunc", RunOptions{})
		_, err := env.store.Create(context.Background(), "job-trunc")
		So(err, ShouldBeNil)

		err = p.Run(context.Background(), testInput())
		So(err, ShouldNotBeNil)

		job, _ := env.store.Get(context.Background(), "job-trunc")
		So(job.Status, ShouldEqual, movie.JobStatusError)
		So(len(job.Error), ShouldBeLessThanOrEqualTo, maxErrorLen)
		// 截断不能把多字节字符切成两半
		So(utf8.ValidString(job.Error), ShouldBeTrue)
	})
}

func TestDeleteJobIdempotent(t *testing.T) {
	Convey("删除任务幂等", t, func() {
		cfg := newTestConfig(t)
		store := jobrepo.NewMemoryStore()
		svc := NewService(cfg, store)
		ctx := context.Background()

		_, err := store.Create(ctx, "job-del")
		So(err, ShouldBeNil)
		jobDir := filepath.Join(cfg.Pipeline.JobsDir, "job-del")
		So(os.MkdirAll(jobDir, 0o755), ShouldBeNil)

		Convey("首次删除清掉记录和工作目录", func() {
			So(svc.DeleteJob(ctx, "job-del"), ShouldBeNil)
			ok, _ := store.Exists(ctx, "job-del")
			So(ok, ShouldBeFalse)
			_, serr := os.Stat(jobDir)
			So(os.IsNotExist(serr), ShouldBeTrue)

			Convey("重复删除同样成功", func() {
				So(svc.DeleteJob(ctx, "job-del"), ShouldBeNil)
			})
		})

		Convey("删除从未存在的任务也成功", func() {
			So(svc.DeleteJob(ctx, "never-existed"), ShouldBeNil)
		})
	})
}

// resumeBreakdownJSON 一个已含三阶段结果的分镜文件
var resumeBreakdownJSON = `{
  "Relationships": {"一二 - 布布": "Friends"},
  "Sub-Script": {
    "Sub-Script 1": {
      "Plot": "一二和布布逛艺术馆",
      "Involving Characters": ["一二", "布布"],
      "Timeline": "下午",
      "Reason for Division": "Event 1",
      "Scene Annotation": {
        "Scene": {
          "Scene 1": {
            "Involving Characters": ["一二", "布布"],
            "Plot": "看画",
            "Scene Description": "展厅",
            "Emotional Tone": "温馨",
            "Visual Style": "卡通",
            "Key Props": ["画框"],
            "Music and Sound Effects": "钢琴",
            "Cinematography Notes": "特写",
            "Shot Annotation": ` + testShotJSON + `
          }
        }
      }
    }
  }
}`
