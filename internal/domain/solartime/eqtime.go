package solartime

import "math"

const arcsecondsPerRadian = 180 * 3600 / math.Pi

// EquationOfTime returns apparent minus mean solar time in minutes for jd,
// using Smart's series over the low-precision solar elements (Meeus ch. 28).
// Positive values mean the sundial runs ahead of the clock.
func EquationOfTime(jd JulianDay) float64 {
	t := jd.Centuries()
	tau := t / 10

	epsilon := (84381.406 + t*(-46.836769+t*(-0.0001831+t*(0.0020034+t*(-0.000000576-t*0.0000000434))))) / arcsecondsPerRadian

	l0 := normalizeDegrees(280.4664567 + tau*(360007.6982779+tau*(0.03032028+tau*(1.0/49931+tau*(-1.0/15300-tau/2000000)))))
	e := 0.0167086342 + tau*(-0.0004203654+tau*(-0.0000126734+tau*(0.0000001444+tau*(-0.0000000002+tau*0.0000000003))))
	m := normalizeDegrees((1287104.79305 + t*(129596581.0481+t*(-0.5532+t*(0.000136-t*0.00001149)))) / 3600)

	l0Rad := l0 * math.Pi / 180
	mRad := m * math.Pi / 180

	y := math.Tan(epsilon / 2)
	y *= y

	eRad := y*math.Sin(2*l0Rad) -
		2*e*math.Sin(mRad) +
		4*e*y*math.Sin(mRad)*math.Cos(2*l0Rad) -
		0.5*y*y*math.Sin(4*l0Rad) -
		1.25*e*e*math.Sin(2*mRad)

	return eRad * minutesPerDegree * 180 / math.Pi
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
