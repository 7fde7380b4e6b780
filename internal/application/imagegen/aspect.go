// Package imagegen 实现图像生成编排
package imagegen

// aspectDimensions 宽高比到像素尺寸的映射
var aspectDimensions = map[string][2]int{
	"1:1":  {1024, 1024},
	"16:9": {1792, 1024},
	"9:16": {1024, 1792},
	"4:3":  {1152, 864},
	"3:4":  {864, 1152},
}

// Dimensions 根据宽高比返回目标尺寸，未知比例回退到 1:1
func Dimensions(aspectRatio string) (width, height int) {
	if d, ok := aspectDimensions[aspectRatio]; ok {
		return d[0], d[1]
	}
	return 1024, 1024
}
