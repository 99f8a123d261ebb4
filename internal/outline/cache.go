package outline

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// 文档注释：轮廓缓存
// 背景：GEOS 外扩合并在大区（上千个面）上耗时数秒；输入几何与参数不变时直接复用上次结果。
// 约束：键与特征顺序无关（逐个 WKB 摘要排序后再整体摘要）；值必须可 JSON 往返。
type Cache interface {
	Get(ctx context.Context, key string) (*Outline, bool)
	Set(ctx context.Context, key string, o *Outline)
}

// Key：输入几何与参数的摘要
func Key(features []*geojson.Feature, p Params) (string, error) {
	sums := make([]string, 0, len(features))
	for _, f := range features {
		if f == nil || f.Geometry == nil || !isPolygonal(f.Geometry) {
			continue
		}
		b, err := wkb.Marshal(f.Geometry, wkb.NDR)
		if err != nil {
			return "", err
		}
		s := sha256.Sum256(b)
		sums = append(sums, hex.EncodeToString(s[:]))
	}
	sort.Strings(sums)
	h := sha256.New()
	h.Write([]byte(p.fingerprint()))
	for _, s := range sums {
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// cachedOutline：缓存中的序列化形态
type cachedOutline struct {
	Outline
	Geometry *geojson.Geometry `json:"geometry"`
}

func encodeOutline(o *Outline) ([]byte, error) {
	c := cachedOutline{Outline: *o}
	if o.Geometry != nil {
		g, err := geojson.Encode(o.Geometry)
		if err != nil {
			return nil, err
		}
		c.Geometry = g
	}
	return json.Marshal(c)
}

func decodeOutline(b []byte) (*Outline, error) {
	var c cachedOutline
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	o := c.Outline
	if c.Geometry != nil {
		g, err := c.Geometry.Decode()
		if err != nil {
			return nil, err
		}
		o.Geometry = g
	}
	return &o, nil
}

// LRU：进程内缓存，容量与 TTL 可调
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k   string
	v   []byte
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

// Get：返回解码后的新对象，调用方修改不影响缓存
func (c *LRU) Get(_ context.Context, k string) (*Outline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return nil, false
	}
	it := e.Value.(entry)
	if c.ttl > 0 && time.Now().After(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return nil, false
	}
	o, err := decodeOutline(it.v)
	if err != nil {
		return nil, false
	}
	c.lst.MoveToFront(e)
	return o, true
}

func (c *LRU) Set(_ context.Context, k string, o *Outline) {
	b, err := encodeOutline(o)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: b, exp: time.Now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// Chain：按顺序查找，命中后回填前面的层
type Chain []Cache

func (ch Chain) Get(ctx context.Context, k string) (*Outline, bool) {
	for i, c := range ch {
		if o, ok := c.Get(ctx, k); ok {
			for j := 0; j < i; j++ {
				ch[j].Set(ctx, k, o)
			}
			return o, true
		}
	}
	return nil, false
}

func (ch Chain) Set(ctx context.Context, k string, o *Outline) {
	for _, c := range ch {
		c.Set(ctx, k, o)
	}
}
