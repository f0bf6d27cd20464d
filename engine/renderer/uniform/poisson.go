package uniform

// PoissonDisk holds 32 well-spaced sample offsets inside the unit disk, used for soft shadow
// filtering.
var PoissonDisk = [32][2]float32{
	{-0.1738, 0.3473}, {-0.1569, -0.2187}, {-0.5894, -0.1352}, {0.6656, 0.2539},
	{0.2726, 0.1280}, {-0.8090, 0.4153}, {-0.6778, -0.6988}, {0.3390, -0.4179},
	{-0.3245, 0.8431}, {0.3216, 0.6915}, {-0.3922, -0.4675}, {-0.5240, 0.1587},
	{0.2301, -0.8038}, {0.0281, 0.7574}, {-0.9238, -0.1475}, {-0.0691, -0.5321},
	{-0.2598, -0.7259}, {0.5206, -0.8207}, {-0.8042, 0.1320}, {-0.5938, 0.7291},
	{0.2154, 0.4308}, {0.7951, -0.2414}, {0.7130, -0.5212}, {0.9231, 0.1492},
	{0.6483, 0.6998}, {-0.4108, 0.5380}, {-0.8235, -0.4756}, {0.4762, -0.1811},
	{0.4800, 0.4601}, {0.1854, 0.9582}, {0.8701, 0.4257}, {-0.0771, 0.1105},
}

// poissonDiskData is PoissonDisk padded to the vec4 array stride of a uniform buffer.
var poissonDiskData = func() [32 * 4]float32 {
	var out [32 * 4]float32
	for i, p := range PoissonDisk {
		out[i*4] = p[0]
		out[i*4+1] = p[1]
	}
	return out
}()
