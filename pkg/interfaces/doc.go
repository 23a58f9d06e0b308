// Package interfaces 定义 tcplink 公共接口
//
// 内部组件只依赖这里的接口，具体实现位于 internal/core 下。
package interfaces
