package oss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	cases := map[string]string{
		"https://film.oss-cn-hangzhou.aliyuncs.com/post/images/2026/10/15/a.jpg": "post/images/2026/10/15/a.jpg",
		"http://film.oss-cn-hangzhou.aliyuncs.com/a.mp4":                         "a.mp4",
		"film.oss-cn-hangzhou.aliyuncs.com/x/y":                                  "x/y",
		"https://film.oss-cn-hangzhou.aliyuncs.com/":                             "",
		"https://film.oss-cn-hangzhou.aliyuncs.com":                              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ObjectKeyFromURL(in), in)
	}
}

func TestStoreURL(t *testing.T) {
	s := &Store{BucketName: "film", Endpoint: trimScheme("https://oss-cn-hangzhou.aliyuncs.com")}
	url := s.URL("post/1.png")
	assert.Equal(t, "https://film.oss-cn-hangzhou.aliyuncs.com/post/1.png", url)
	assert.Equal(t, "post/1.png", ObjectKeyFromURL(url))
}
