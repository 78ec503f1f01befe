package sendable

import "sync"

// AccelerometerType — тип виджета для dashboard.
const AccelerometerType = "3AxisAccelerometer"

// AccelSource — источник показаний акселерометра (в g).
type AccelSource interface {
	X() float64
	Y() float64
	Z() float64
}

// Accelerometer публикует показания трёх осей: X, Y, Z.
type Accelerometer struct {
	Base
	src AccelSource
}

// NewAccelerometer создаёт виджет акселерометра.
func NewAccelerometer(name string, src AccelSource) *Accelerometer {
	a := &Accelerometer{src: src}
	a.SetName(name)
	return a
}

// InitSendable реализует Sendable.
func (a *Accelerometer) InitSendable(b Builder) {
	b.SetSmartDashboardType(AccelerometerType)
	b.AddDoubleProperty("X", a.src.X, nil)
	b.AddDoubleProperty("Y", a.src.Y, nil)
	b.AddDoubleProperty("Z", a.src.Z, nil)
}

// SimAccel — программный источник показаний (симуляция, тесты).
type SimAccel struct {
	mu      sync.RWMutex
	x, y, z float64
}

// NewSimAccel создаёт источник в покое: 1g по оси Z.
func NewSimAccel() *SimAccel {
	return &SimAccel{z: 1}
}

// Set задаёт показания.
func (s *SimAccel) Set(x, y, z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y, s.z = x, y, z
}

func (s *SimAccel) X() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x
}

func (s *SimAccel) Y() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.y
}

func (s *SimAccel) Z() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.z
}
